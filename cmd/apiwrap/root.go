package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/apiwrap/config"
	"github.com/kbukum/apiwrap/httpclient"
	"github.com/kbukum/apiwrap/logger"
	"github.com/kbukum/apiwrap/observability"
	"github.com/kbukum/apiwrap/version"
	"github.com/kbukum/apiwrap/wrapper"
)

// app holds the state shared by the subcommands.
type app struct {
	out        io.Writer
	configFile string
	envFile    string
	verbose    bool

	cfg      *config.Config
	client   *wrapper.Client
	shutdown observability.ShutdownFunc
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "apiwrap",
		Short:         "Explore and call HTTP APIs from a definition file",
		Version:       version.Get().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
	}
	root.SetOut(out)
	root.SetVersionTemplate("{{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "definition file (default: apiwrap.yml, config.yml or the user config dir)")
	flags.StringVar(&a.envFile, "env-file", "", ".env file with APIWRAP_ overrides")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log requests at debug level")

	root.AddCommand(
		a.newResourcesCmd(),
		a.newDocCmd(),
		a.newCallCmd(),
		newVersionCmd(out),
	)
	return root
}

// load reads the configuration and builds the client. Subcommands that
// talk to the API use it as their PreRunE.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	var opts []config.LoaderOption
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}
	if a.envFile != "" {
		opts = append(opts, config.WithEnvFile(a.envFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	a.cfg = cfg

	logger.Init(cfg.Logging)
	log := logger.WithComponent("apiwrap").WithFields(logger.Fields("api", cfg.API.Name))
	logger.Register("apiwrap", log)

	ctx := cmd.Context()
	shutdown, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		return fmt.Errorf("setup observability: %w", err)
	}
	a.shutdown = shutdown

	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}
	a.client = client
	return nil
}

func newClient(cfg *config.Config, log *logger.Logger) (*wrapper.Client, error) {
	httpCfg := cfg.HTTP
	if httpCfg.UserAgent == "" {
		httpCfg.UserAgent = version.UserAgent()
	}
	session, err := httpclient.New(httpCfg)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	adapter, err := wrapper.NewDeclarativeAdapter(cfg.API, session)
	if err != nil {
		return nil, err
	}
	opts := append(adapter.Options(),
		wrapper.WithSession(session),
		wrapper.WithLogger(log),
	)
	if cfg.Observability.Enabled {
		metrics, err := observability.NewMetrics(observability.Meter("apiwrap"))
		if err != nil {
			return nil, fmt.Errorf("create metrics: %w", err)
		}
		opts = append(opts, wrapper.WithMetrics(metrics))
	}
	return wrapper.Generate(adapter).New(opts...)
}

func (a *app) close(ctx context.Context) error {
	if a.client != nil {
		_ = a.client.Session().Close(ctx)
	}
	if a.shutdown != nil {
		return a.shutdown(ctx)
	}
	return nil
}
