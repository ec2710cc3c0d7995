package googleclient

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	admin "google.golang.org/api/admin/directory/v1"
	"google.golang.org/api/option"

	"github.com/jdtower/addin-sync/internal/config"
)

// NewDirectoryService builds an Admin SDK directory client using a service
// account with domain-wide delegation. Read-only scopes are enough: the
// reconciler only ever reads group intent from the directory.
func NewDirectoryService(ctx context.Context, cfg config.GoogleConfig) (*admin.Service, error) {
	if cfg.CredentialsFile == "" {
		return nil, fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS env var not set")
	}

	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account JSON: %w", err)
	}

	if cfg.ImpersonateUser == "" {
		return nil, fmt.Errorf("GOOGLE_IMPERSONATE_USER env var not set")
	}

	scopes := []string{
		admin.AdminDirectoryGroupReadonlyScope,
		admin.AdminDirectoryUserReadonlyScope,
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}
	jwtConfig.Subject = cfg.ImpersonateUser

	client := jwtConfig.Client(ctx)

	return admin.NewService(ctx, option.WithHTTPClient(client))
}
