// Package mailplatform defines the management-API contract for per-user
// add-in installations, with a Graph-style REST implementation and an
// in-memory one for sim mode and tests.
package mailplatform

import "context"

// InstalledApp is one application installed in a user's mailbox.
type InstalledApp struct {
	ID          string
	DisplayName string
}

// Client is the management surface the reconciler depends on.
type Client interface {
	// InstallApp installs the application described by manifestURL into the
	// user's mailbox.
	InstallApp(ctx context.Context, userAddress, manifestURL string) error

	// RemoveApp removes a previously installed application by its
	// installation id.
	RemoveApp(ctx context.Context, userAddress, installID string) error

	// ListInstalledApps enumerates the applications currently installed in
	// the user's mailbox.
	ListInstalledApps(ctx context.Context, userAddress string) ([]InstalledApp, error)
}
