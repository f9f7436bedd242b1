// Package cli is the asset-desk command-line front-end.
//
// Commands only talk to the asset, configuration and view-state stores and
// to the label set; they never touch SQL directly.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerrad567/asset-desk/internal/infrastructure/config"
	"github.com/nerrad567/asset-desk/internal/infrastructure/logging"
)

// configEnv names the environment variable holding the config file path.
const configEnv = "ASSETDESK_CONFIG"

// annotationNoStore marks commands that run without opening the databases.
const annotationNoStore = "assetdesk/no-store"

// Options are the process-level inputs of the command tree.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer

	Version string
	Commit  string
	Date    string
}

type runtime struct {
	opts Options

	configPath string
	dbPath     string
	lang       string
	output     string

	cfg *config.Config
	app *App
	out *Formatter
}

// Execute runs the command line in args and releases everything it opened.
func Execute(ctx context.Context, args []string, opts Options) error {
	rt := &runtime{opts: opts}
	root := rt.rootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if rt.app != nil {
		rt.app.Close()
		_ = rt.app.Log.Sync() //nolint:errcheck // stderr sync fails on some terminals
	}
	return err
}

func (rt *runtime) rootCommand() *cobra.Command {
	if rt.opts.Stdout == nil {
		rt.opts.Stdout = os.Stdout
	}
	if rt.opts.Stderr == nil {
		rt.opts.Stderr = os.Stderr
	}

	root := &cobra.Command{
		Use:   "assetdesk",
		Short: "Track devices, licenses and the configurations they belong to",
		Long: `assetdesk keeps an inventory of devices and software licenses and groups
them into configurations. Every device and license belongs to at most one
configuration at a time.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rt.setup,
	}
	root.SetOut(rt.opts.Stdout)
	root.SetErr(rt.opts.Stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&rt.configPath, "config", "", "config file (default $"+configEnv+" or "+config.DefaultPath+")")
	pf.StringVar(&rt.dbPath, "db", "", "database file (overrides database.path)")
	pf.StringVar(&rt.lang, "lang", "", "label language, e.g. en or ja (overrides labels.language)")
	pf.StringVarP(&rt.output, "output", "o", "text", "output format (text|json)")

	root.AddCommand(
		rt.deviceCommand(),
		rt.licenseCommand(),
		rt.configCommand(),
		rt.assignCommand(),
		rt.unassignCommand(),
		rt.moveCommand(),
		rt.ownerCommand(),
		rt.availableCommand(),
		rt.boardCommand(),
		rt.viewCommand(),
		rt.exportCommand(),
		rt.importCommand(),
		rt.seedCommand(),
		rt.migrateCommand(),
		rt.historyCommand(),
		rt.versionCommand(),
	)
	return root
}

// setup loads configuration, applies flag overrides and opens the stores.
func (rt *runtime) setup(cmd *cobra.Command, _ []string) error {
	format, err := ParseFormat(rt.output)
	if err != nil {
		return err
	}
	rt.out = NewFormatter(format, cmd.OutOrStdout())

	if cmd.Annotations[annotationNoStore] == "true" {
		return nil
	}

	cfg, err := rt.loadConfig()
	if err != nil {
		return err
	}
	rt.cfg = cfg

	log := logging.New(cfg.Logging, rt.opts.Version)
	app, err := OpenApp(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	rt.app = app
	return nil
}

func (rt *runtime) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case rt.configPath != "":
		cfg, err = config.Load(rt.configPath)
	case os.Getenv(configEnv) != "":
		cfg, err = config.Load(os.Getenv(configEnv))
	default:
		cfg, err = config.LoadOrDefault(config.DefaultPath)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if rt.dbPath != "" {
		cfg.Database.Path = rt.dbPath
	}
	if rt.lang != "" {
		cfg.Labels.Language = rt.lang
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (rt *runtime) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoStore: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := map[string]string{
				"version": rt.opts.Version,
				"commit":  rt.opts.Commit,
				"date":    rt.opts.Date,
			}
			return rt.out.Message(info, fmt.Sprintf("assetdesk %s (commit %s, built %s)",
				rt.opts.Version, rt.opts.Commit, rt.opts.Date))
		},
	}
}
