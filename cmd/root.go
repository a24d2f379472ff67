package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ndoctl-project/ndoctl/internal/history"
	"github.com/ndoctl-project/ndoctl/internal/ndo"
	"github.com/ndoctl-project/ndoctl/internal/netflow"
	bboltStore "github.com/ndoctl-project/ndoctl/internal/store/bbolt"
	"github.com/ndoctl-project/ndoctl/pkg/planview"
)

var (
	// persistent flags
	cfgFile          string
	flagHost         string
	flagUsername     string
	flagPassword     string
	flagInsecure     bool
	flagTimeout      time.Duration
	flagDebug        bool
	flagVerbose      bool
	flagNoColor      bool
	flagDryRun       bool
	flagStorePath    string
	snapshotInterval uint64

	// template addressing, shared by every subcommand
	flagTemplate   string
	flagTemplateID string
)

var rootCmd = &cobra.Command{
	Use:   "ndoctl",
	Short: "Declarative NetFlow policy management for Nexus Dashboard Orchestrator",
	Long: `ndoctl manages the NetFlow exporters, records and monitors of tenant
policy templates on a Nexus Dashboard Orchestrator. Desired state is declared
through flags; ndoctl fetches the template, computes the minimal set of patch
operations and applies them. Every applied change is committed to a local
revision log that can be listed, diffed and restored.`,
	SilenceUsage: true,
}

var setupLog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().
	Timestamp().
	Logger()

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.ndoctl.yaml)")
	pf.StringVar(&flagHost, "host", "",
		"Base URL of the orchestrator, e.g. https://nd.example.com")
	pf.StringVarP(&flagUsername, "username", "u", "admin",
		"Username for the orchestrator API")
	pf.StringVarP(&flagPassword, "password", "p", "",
		"Password for the orchestrator API")
	pf.BoolVarP(&flagInsecure, "insecure", "k", false,
		"Skip TLS certificate verification")
	pf.DurationVar(&flagTimeout, "timeout", 30*time.Second,
		"HTTP timeout for orchestrator requests")
	pf.BoolVar(&flagDebug, "debug", false,
		"Enable debug logging to stderr")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false,
		"Dump the full result structure after each command")
	pf.BoolVar(&flagNoColor, "no-color", false,
		"Disable colored output")
	pf.BoolVar(&flagDryRun, "dry-run", false,
		"Compute and show the patch operations without applying them")
	pf.StringVar(&flagStorePath, "store", "",
		"Path to the local revision log (default $HOME/.ndoctl/history.db)")
	pf.Uint64VarP(&snapshotInterval, "snapshot-interval", "s", 8,
		"Store a full template snapshot after this many patch revisions")

	pf.StringVarP(&flagTemplate, "template", "t", "",
		"Name of the tenant policy template")
	pf.StringVar(&flagTemplateID, "template-id", "",
		"ID of the tenant policy template (alternative to --template)")

	mustBind("host", viper.BindPFlag("host", pf.Lookup("host")))
	mustBind("username", viper.BindPFlag("username", pf.Lookup("username")))
	mustBind("password", viper.BindPFlag("password", pf.Lookup("password")))
	mustBind("insecure", viper.BindPFlag("insecure", pf.Lookup("insecure")))
	mustBind("timeout", viper.BindPFlag("timeout", pf.Lookup("timeout")))
	mustBind("store", viper.BindPFlag("store", pf.Lookup("store")))
	mustBind("snapshot-interval", viper.BindPFlag("snapshot-interval", pf.Lookup("snapshot-interval")))
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ndoctl")
	}

	viper.SetEnvPrefix("NDO")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		setupLog.Debug().Msgf("Using config file: %s", viper.ConfigFileUsed())
	}

	if flagDebug {
		log.Logger = setupLog.Level(zerolog.DebugLevel)
	} else {
		log.Logger = setupLog.Level(zerolog.WarnLevel)
	}
}

// newClient builds the orchestrator client from flags, environment and
// config file.
func newClient() (*ndo.Client, error) {
	return ndo.NewClient(ndo.Config{
		Host:     viper.GetString("host"),
		Username: viper.GetString("username"),
		Password: viper.GetString("password"),
		Insecure: flagInsecure || viper.GetBool("insecure"),
		Timeout:  viper.GetDuration("timeout"),
	})
}

func newService() (*netflow.Service, *ndo.Client, error) {
	client, err := newClient()
	if err != nil {
		return nil, nil, err
	}
	svc := netflow.NewService(client)
	svc.DryRun = flagDryRun
	return svc, client, nil
}

func templateRef() netflow.TemplateRef {
	return netflow.TemplateRef{ID: flagTemplateID, Name: flagTemplate}
}

func requireTemplate(*cobra.Command, []string) error {
	if flagTemplate == "" && flagTemplateID == "" {
		return fmt.Errorf("either --template or --template-id is required")
	}
	return nil
}

func requireNameOrUUID(cmd *cobra.Command, _ []string) error {
	if err := requireTemplate(cmd, nil); err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("name")
	uuid, _ := cmd.Flags().GetString("uuid")
	if name == "" && uuid == "" {
		return fmt.Errorf("either --name or --uuid is required")
	}
	return nil
}

func storePath() (string, error) {
	if p := viper.GetString("store"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".ndoctl")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

func openHistory() (*history.Service, error) {
	path, err := storePath()
	if err != nil {
		return nil, err
	}
	interval := viper.GetUint64("snapshot-interval")
	if interval == 0 {
		interval = snapshotInterval
	}
	rs, err := bboltStore.New(path, nil)
	if err != nil {
		return nil, fmt.Errorf("opening revision log: %w", err)
	}
	return history.NewService(rs, interval), nil
}

// recordRevision commits the template's post-apply state to the local
// revision log. Log failures must not fail the applied change, so they are
// only logged.
func recordRevision(ctx context.Context, client *ndo.Client, ref netflow.TemplateRef) {
	hist, err := openHistory()
	if err != nil {
		log.Warn().Err(err).Msg("Cannot open revision log, skipping commit")
		return
	}
	defer func() { _ = hist.Close() }()

	id := ref.ID
	if id == "" {
		id, err = client.FindTemplateID(ctx, ref.Name, ndo.TenantPolicyType)
		if err != nil {
			log.Warn().Err(err).Msg("Cannot resolve template for revision log")
			return
		}
	}
	tpl, err := client.GetTemplate(ctx, id)
	if err != nil {
		log.Warn().Err(err).Msg("Cannot fetch template for revision log")
		return
	}
	rev, err := hist.Commit(ctx, id, tpl.Doc())
	if err != nil {
		log.Warn().Err(err).Msg("Cannot commit revision")
		return
	}
	log.Debug().Stringer("revision", rev).Str("template", id).Msg("Committed revision")
}

func theme() planview.Theme {
	if flagNoColor {
		return planview.PlainTheme
	}
	return planview.DarkTheme
}

func mustBind(flagName string, err error) {
	if err != nil {
		setupLog.Fatal().Err(err).Msgf("Failed to bind flag %s", flagName)
	}
}
