package mailplatform

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/jdtower/addin-sync/tools"
)

// MemoryPlatform is the simulated management backend. Install records carry a
// display name derived from the manifest URL, matching how the real platform
// surfaces the manifest's DisplayName element.
type MemoryPlatform struct {
	mu        sync.Mutex
	installed map[string][]InstalledApp
	nextID    int
}

func NewMemoryPlatform() *MemoryPlatform {
	return &MemoryPlatform{installed: make(map[string][]InstalledApp)}
}

func (p *MemoryPlatform) InstallApp(_ context.Context, userAddress, manifestURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	name := displayNameFromManifest(manifestURL)
	for _, app := range p.installed[userAddress] {
		if app.DisplayName == name {
			return fmt.Errorf("%s is already installed for %s", name, userAddress)
		}
	}

	p.nextID++
	p.installed[userAddress] = append(p.installed[userAddress], InstalledApp{
		ID:          fmt.Sprintf("%s-%04d", tools.Slugify(name), p.nextID),
		DisplayName: name,
	})
	return nil
}

func (p *MemoryPlatform) RemoveApp(_ context.Context, userAddress, installID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	apps := p.installed[userAddress]
	for i, app := range apps {
		if app.ID == installID {
			p.installed[userAddress] = append(apps[:i], apps[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("installation %s not found for %s", installID, userAddress)
}

func (p *MemoryPlatform) ListInstalledApps(_ context.Context, userAddress string) ([]InstalledApp, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	apps := p.installed[userAddress]
	out := make([]InstalledApp, len(apps))
	copy(out, apps)
	return out, nil
}

// displayNameFromManifest turns ".../manifests/salesforce-connector.xml" into
// "Salesforce Connector".
func displayNameFromManifest(manifestURL string) string {
	base := path.Base(manifestURL)
	base = strings.TrimSuffix(base, path.Ext(base))
	return tools.TitleCase(base)
}
