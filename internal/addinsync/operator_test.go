package addinsync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdtower/addin-sync/internal/mailplatform"
)

func salesforceTarget() Target {
	return Target{
		GroupName:   testPrefix + "-salesforce-prod",
		AddInID:     "salesforce",
		Environment: "prod",
		ManifestURL: "https://apps.x.com/manifests/salesforce.xml",
	}
}

func TestOperatorInstall(t *testing.T) {
	ctx := context.Background()
	platform := mailplatform.NewMemoryPlatform()
	stats := &RunStats{}

	NewOperator(platform, false, stats).Install(ctx, "alice@x.com", salesforceTarget())

	apps, err := platform.ListInstalledApps(ctx, "alice@x.com")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Salesforce", apps[0].DisplayName)
	assert.EqualValues(t, 1, stats.Installs.Load())
	assert.EqualValues(t, 0, stats.Errors.Load())
}

func TestOperatorRemoveMatchesBySubstring(t *testing.T) {
	ctx := context.Background()
	platform := mailplatform.NewMemoryPlatform()
	stats := &RunStats{}
	require.NoError(t, platform.InstallApp(ctx, "alice@x.com", "https://apps.x.com/manifests/salesforce-connector.xml"))

	NewOperator(platform, false, stats).Remove(ctx, "alice@x.com", salesforceTarget())

	apps, err := platform.ListInstalledApps(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Empty(t, apps)
	assert.EqualValues(t, 1, stats.Removes.Load())
	assert.EqualValues(t, 0, stats.Errors.Load())
}

func TestOperatorRemoveMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	platform := mailplatform.NewMemoryPlatform()
	stats := &RunStats{}

	// Nothing installed: removal logs a warning and succeeds.
	NewOperator(platform, false, stats).Remove(ctx, "alice@x.com", salesforceTarget())

	assert.EqualValues(t, 0, stats.Removes.Load())
	assert.EqualValues(t, 0, stats.Errors.Load())
}

func TestOperatorDryRunTouchesNothing(t *testing.T) {
	ctx := context.Background()
	platform := mailplatform.NewMemoryPlatform()
	stats := &RunStats{}
	op := NewOperator(platform, true, stats)

	op.Install(ctx, "alice@x.com", salesforceTarget())
	op.Remove(ctx, "alice@x.com", salesforceTarget())

	apps, err := platform.ListInstalledApps(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.Empty(t, apps)
	assert.EqualValues(t, 0, stats.Installs.Load())
	assert.EqualValues(t, 0, stats.Removes.Load())
	assert.EqualValues(t, 0, stats.Errors.Load())
}

func TestOperatorInstallFailureCountsAndContinues(t *testing.T) {
	ctx := context.Background()
	stats := &RunStats{}
	op := NewOperator(&flakyPlatform{
		MemoryPlatform: mailplatform.NewMemoryPlatform(),
		failFor:        "bad@x.com",
	}, false, stats)

	op.Install(ctx, "bad@x.com", salesforceTarget())
	op.Install(ctx, "good@x.com", salesforceTarget())

	assert.EqualValues(t, 1, stats.Errors.Load())
	assert.EqualValues(t, 1, stats.Installs.Load())
}

// flakyPlatform fails installs for one address and delegates the rest.
type flakyPlatform struct {
	*mailplatform.MemoryPlatform
	failFor string
}

func (f *flakyPlatform) InstallApp(ctx context.Context, userAddress, manifestURL string) error {
	if userAddress == f.failFor {
		return errors.New("mailbox locked")
	}
	return f.MemoryPlatform.InstallApp(ctx, userAddress, manifestURL)
}
