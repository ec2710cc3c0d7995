package addinsync

import (
	"context"
	"strings"

	"github.com/jdtower/addin-sync/internal/mailplatform"
	"github.com/jdtower/addin-sync/tools"
)

// Operator applies a single install or remove against the management client.
// All failures are logged and counted here so the engine's loops never stop
// on one user.
type Operator struct {
	platform mailplatform.Client
	dryRun   bool
	stats    *RunStats
}

func NewOperator(platform mailplatform.Client, dryRun bool, stats *RunStats) *Operator {
	return &Operator{platform: platform, dryRun: dryRun, stats: stats}
}

func (o *Operator) Install(ctx context.Context, user string, target Target) {
	if o.dryRun {
		tools.Log.Infof("[DRY RUN] Would install %s (%s) for %s", target.AddInID, target.ManifestURL, user)
		return
	}

	if err := o.platform.InstallApp(ctx, user, target.ManifestURL); err != nil {
		tools.Log.WithError(err).Errorf("Failed to install %s for %s", target.AddInID, user)
		o.stats.Errors.Add(1)
		return
	}

	o.stats.Installs.Add(1)
	tools.Log.Infof("Installed %s for %s", target.AddInID, user)
}

func (o *Operator) Remove(ctx context.Context, user string, target Target) {
	if o.dryRun {
		tools.Log.Infof("[DRY RUN] Would remove %s for %s", target.AddInID, user)
		return
	}

	installed, err := o.platform.ListInstalledApps(ctx, user)
	if err != nil {
		tools.Log.WithError(err).Errorf("Failed to list installed apps for %s", user)
		o.stats.Errors.Add(1)
		return
	}

	app, found := matchInstalledApp(installed, target.AddInID)
	if !found {
		// Already absent: removal is an idempotent no-op.
		tools.Log.WithFields(map[string]interface{}{
			"user":  user,
			"addin": target.AddInID,
		}).Warn("No matching installation found for removal")
		return
	}

	if err := o.platform.RemoveApp(ctx, user, app.ID); err != nil {
		tools.Log.WithError(err).Errorf("Failed to remove %s for %s", target.AddInID, user)
		o.stats.Errors.Add(1)
		return
	}

	o.stats.Removes.Add(1)
	tools.Log.Infof("Removed %s (%s) for %s", target.AddInID, app.ID, user)
}

// matchInstalledApp finds an installation whose display name contains the
// add-in id, case-insensitively. Display names drift cosmetically across
// platform versions; the substring match tolerates that at the cost of false
// positives when two add-ins share a name fragment.
func matchInstalledApp(apps []mailplatform.InstalledApp, addInID string) (mailplatform.InstalledApp, bool) {
	needle := strings.ToLower(strings.ReplaceAll(addInID, "-", " "))
	for _, app := range apps {
		name := strings.ToLower(app.DisplayName)
		if strings.Contains(name, needle) || strings.Contains(strings.ReplaceAll(name, " ", "-"), strings.ToLower(addInID)) {
			return app, true
		}
	}
	return mailplatform.InstalledApp{}, false
}
