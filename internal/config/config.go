package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Backend selector values accepted on the command line.
const (
	DirectoryLDAP   = "ldap"
	DirectoryGoogle = "google"
	DirectoryMemory = "memory"

	PlatformGraph  = "graph"
	PlatformMemory = "memory"
)

// LDAPConfig carries the directory connection parameters for the ldap backend.
type LDAPConfig struct {
	Server   string
	Port     string
	User     string
	Password string
	BaseDN   string
}

// GoogleConfig carries the Workspace connection parameters for the google
// backend.
type GoogleConfig struct {
	CredentialsFile string
	ImpersonateUser string
}

// MgmtConfig carries the mail-platform management API parameters for the
// graph backend.
type MgmtConfig struct {
	BaseURL      string
	TenantID     string
	ClientID     string
	ClientSecret string
}

type Config struct {
	Directory    string
	Platform     string
	GroupPrefix  string
	GroupPattern string
	SnapshotPath string
	LogDir       string
	DryRun       bool

	LDAP   LDAPConfig
	Google GoogleConfig
	Mgmt   MgmtConfig
}

// Load materializes the run configuration from viper. Flags are expected to
// be bound by the command layer; connection parameters come from the
// environment (optionally seeded from a .env file).
func Load() (*Config, error) {
	viper.SetDefault("group.prefix", "app-exchangeaddin")
	viper.SetDefault("snapshot.path", "addin-sync-state.json")
	viper.SetDefault("backend.directory", DirectoryLDAP)
	viper.SetDefault("backend.platform", PlatformGraph)
	viper.SetDefault("ldap.port", "389")
	viper.SetDefault("mgmt.base_url", "https://graph.microsoft.com/v1.0")

	for key, env := range map[string]string{
		"ldap.server":        "LDAP_SERVER",
		"ldap.port":          "LDAP_PORT",
		"ldap.user":          "LDAP_USER",
		"ldap.password":      "LDAP_PASSWORD",
		"ldap.base_dn":       "BASE_DN",
		"google.credentials": "GOOGLE_APPLICATION_CREDENTIALS",
		"google.impersonate": "GOOGLE_IMPERSONATE_USER",
		"mgmt.base_url":      "MGMT_BASE_URL",
		"mgmt.tenant_id":     "MGMT_TENANT_ID",
		"mgmt.client_id":     "MGMT_CLIENT_ID",
		"mgmt.client_secret": "MGMT_CLIENT_SECRET",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	cfg := &Config{
		Directory:    viper.GetString("backend.directory"),
		Platform:     viper.GetString("backend.platform"),
		GroupPrefix:  viper.GetString("group.prefix"),
		GroupPattern: viper.GetString("group.pattern"),
		SnapshotPath: viper.GetString("snapshot.path"),
		LogDir:       viper.GetString("log.dir"),
		DryRun:       viper.GetBool("dry_run"),
		LDAP: LDAPConfig{
			Server:   viper.GetString("ldap.server"),
			Port:     viper.GetString("ldap.port"),
			User:     viper.GetString("ldap.user"),
			Password: viper.GetString("ldap.password"),
			BaseDN:   viper.GetString("ldap.base_dn"),
		},
		Google: GoogleConfig{
			CredentialsFile: viper.GetString("google.credentials"),
			ImpersonateUser: viper.GetString("google.impersonate"),
		},
		Mgmt: MgmtConfig{
			BaseURL:      viper.GetString("mgmt.base_url"),
			TenantID:     viper.GetString("mgmt.tenant_id"),
			ClientID:     viper.GetString("mgmt.client_id"),
			ClientSecret: viper.GetString("mgmt.client_secret"),
		},
	}

	if cfg.GroupPattern == "" {
		cfg.GroupPattern = cfg.GroupPrefix + "-*"
	}

	switch cfg.Directory {
	case DirectoryLDAP, DirectoryGoogle, DirectoryMemory:
	default:
		return nil, fmt.Errorf("unknown directory backend %q", cfg.Directory)
	}
	switch cfg.Platform {
	case PlatformGraph, PlatformMemory:
	default:
		return nil, fmt.Errorf("unknown platform backend %q", cfg.Platform)
	}

	return cfg, nil
}
