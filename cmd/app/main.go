package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jdtower/addin-sync/internal/addinsync"
	"github.com/jdtower/addin-sync/internal/config"
	"github.com/jdtower/addin-sync/internal/directory"
	"github.com/jdtower/addin-sync/internal/googleclient"
	"github.com/jdtower/addin-sync/internal/ldapclient"
	"github.com/jdtower/addin-sync/internal/mailplatform"
	"github.com/jdtower/addin-sync/internal/snapshot"
	"github.com/jdtower/addin-sync/tools"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "addin-sync",
	Short: "Reconcile mail add-in installs from directory group membership",
	Long: `addin-sync discovers add-in intent groups in a directory
(<prefix>-<addInId>-<environment>), diffs each group's membership against the
last persisted snapshot, and installs or removes the add-in per user on the
mail platform so the two converge. Designed to run repeatedly from a
scheduler; each run is idempotent given a stable directory state.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	flags := rootCmd.Flags()
	flags.String("directory", config.DirectoryLDAP, "directory backend (ldap, google, memory)")
	flags.String("platform", config.PlatformGraph, "mail platform backend (graph, memory)")
	flags.String("group-prefix", "app-exchangeaddin", "structural prefix of add-in group names")
	flags.String("group-pattern", "", "directory search pattern (default <prefix>-*)")
	flags.String("snapshot", "addin-sync-state.json", "path of the persisted membership snapshot")
	flags.String("log-dir", "", "directory for per-day, per-severity log files")
	flags.Bool("dry-run", false, "log intended installs/removes without calling the platform")
	flags.StringVar(&envFile, "env-file", ".env", "env file with connection parameters")

	// Binding a registered flag cannot fail; the config layer revalidates
	// everything these feed.
	_ = viper.BindPFlag("backend.directory", flags.Lookup("directory"))
	_ = viper.BindPFlag("backend.platform", flags.Lookup("platform"))
	_ = viper.BindPFlag("group.prefix", flags.Lookup("group-prefix"))
	_ = viper.BindPFlag("group.pattern", flags.Lookup("group-pattern"))
	_ = viper.BindPFlag("snapshot.path", flags.Lookup("snapshot"))
	_ = viper.BindPFlag("log.dir", flags.Lookup("log-dir"))
	_ = viper.BindPFlag("dry_run", flags.Lookup("dry-run"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	tools.InitLogger()

	// Env may come from the process instead; a missing .env is fine.
	if err := godotenv.Load(envFile); err != nil {
		tools.Log.Debugf("No env file loaded from %s: %v", envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.LogDir != "" {
		if err := tools.EnableFileLogging(cfg.LogDir); err != nil {
			tools.Log.WithError(err).Warn("File logging disabled")
		}
	}

	ctx := context.Background()

	dir, cleanup, err := buildDirectory(ctx, cfg)
	if err != nil {
		return fmt.Errorf("directory backend: %w", err)
	}
	defer cleanup()

	platform, err := buildPlatform(cfg)
	if err != nil {
		return fmt.Errorf("platform backend: %w", err)
	}

	if cfg.DryRun {
		tools.Log.Info("Dry run enabled, no changes will be made")
	}

	stats := &addinsync.RunStats{}
	engine := addinsync.NewEngine(dir, platform, snapshot.NewStore(cfg.SnapshotPath), addinsync.Options{
		GroupPrefix:  cfg.GroupPrefix,
		GroupPattern: cfg.GroupPattern,
		DryRun:       cfg.DryRun,
	}, stats)

	return engine.Run(ctx)
}

func buildDirectory(ctx context.Context, cfg *config.Config) (directory.Client, func(), error) {
	switch cfg.Directory {
	case config.DirectoryLDAP:
		client, err := ldapclient.Connect(cfg.LDAP)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to LDAP: %w", err)
		}
		return directory.NewLDAPDirectory(client), client.Close, nil

	case config.DirectoryGoogle:
		svc, err := googleclient.NewDirectoryService(ctx, cfg.Google)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Google Directory client: %w", err)
		}
		return directory.NewGoogleDirectory(ctx, svc), func() {}, nil

	default:
		return seedDemoDirectory(cfg.GroupPrefix), func() {}, nil
	}
}

func buildPlatform(cfg *config.Config) (mailplatform.Client, error) {
	if cfg.Platform == config.PlatformGraph {
		return mailplatform.NewGraphClient(cfg.Mgmt)
	}
	return mailplatform.NewMemoryPlatform(), nil
}

// seedDemoDirectory backs sim mode with a small fixed tenant so a run has
// something to reconcile.
func seedDemoDirectory(prefix string) *directory.MemoryDirectory {
	dir := directory.NewMemoryDirectory()

	dir.AddUser("u-alice", "alice@example.com")
	dir.AddUser("u-bob", "bob@example.com")
	dir.AddUser("u-carol", "carol@example.com")
	dir.AddUser("u-svc", "") // service account without a mailbox

	dir.AddGroup(
		prefix+"-salesforce-prod",
		"https://apps.example.com/manifests/salesforce.xml deployed to sales",
		directory.Member{AccountID: "u-alice", Type: directory.MemberTypeUser},
		directory.Member{AccountID: "u-bob", Type: directory.MemberTypeUser},
		directory.Member{AccountID: "u-svc", Type: directory.MemberTypeUser},
	)
	dir.AddGroup(
		prefix+"-report-viewer-test",
		"https://apps.example.com/manifests/report-viewer.xml",
		directory.Member{AccountID: "u-carol", Type: directory.MemberTypeUser},
	)

	return dir
}
