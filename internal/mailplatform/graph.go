package mailplatform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/jdtower/addin-sync/internal/config"
)

const tokenScope = "https://graph.microsoft.com/.default"

// GraphClient talks to the mail platform's management REST API using app-only
// bearer tokens. Requests are rate limited; the Graph throttling budget is
// easy to blow through when a first run installs for a whole tenant.
type GraphClient struct {
	baseURL    string
	httpClient *http.Client
	cred       *azidentity.ClientSecretCredential
	limiter    *rate.Limiter

	mu    sync.Mutex
	token azcore.AccessToken
}

func NewGraphClient(cfg config.MgmtConfig) (*GraphClient, error) {
	if cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("MGMT_TENANT_ID, MGMT_CLIENT_ID and MGMT_CLIENT_SECRET must be set")
	}

	cred, err := azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build credential: %w", err)
	}

	return &GraphClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		cred:       cred,
		limiter:    rate.NewLimiter(rate.Limit(10), 1),
	}, nil
}

func (c *GraphClient) InstallApp(ctx context.Context, userAddress, manifestURL string) error {
	body, err := json.Marshal(map[string]string{"manifestUrl": manifestURL})
	if err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodPost, c.appsURL(userAddress), body)
	if err != nil {
		return fmt.Errorf("install failed for %s: %w", userAddress, err)
	}
	return nil
}

func (c *GraphClient) RemoveApp(ctx context.Context, userAddress, installID string) error {
	_, err := c.do(ctx, http.MethodDelete, c.appsURL(userAddress)+"/"+url.PathEscape(installID), nil)
	if err != nil {
		return fmt.Errorf("remove failed for %s: %w", userAddress, err)
	}
	return nil
}

func (c *GraphClient) ListInstalledApps(ctx context.Context, userAddress string) ([]InstalledApp, error) {
	raw, err := c.do(ctx, http.MethodGet, c.appsURL(userAddress), nil)
	if err != nil {
		return nil, fmt.Errorf("list failed for %s: %w", userAddress, err)
	}

	var apps []InstalledApp
	gjson.GetBytes(raw, "value").ForEach(func(_, item gjson.Result) bool {
		apps = append(apps, InstalledApp{
			ID:          item.Get("id").String(),
			DisplayName: item.Get("displayName").String(),
		})
		return true
	})
	return apps, nil
}

func (c *GraphClient) appsURL(userAddress string) string {
	return fmt.Sprintf("%s/users/%s/mailboxApps", c.baseURL, url.PathEscape(userAddress))
}

func (c *GraphClient) do(ctx context.Context, method, reqURL string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("token acquisition failed: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		msg := gjson.GetBytes(raw, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("%s %s: %d %s", method, reqURL, resp.StatusCode, msg)
	}
	return raw, nil
}

// bearerToken reuses the cached app token until shortly before expiry.
func (c *GraphClient) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.Token != "" && time.Until(c.token.ExpiresOn) > 2*time.Minute {
		return c.token.Token, nil
	}

	token, err := c.cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{tokenScope}})
	if err != nil {
		return "", err
	}
	c.token = token
	return token.Token, nil
}
