package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/worldgraph/internal/config"
	"github.com/roach88/worldgraph/internal/log"
	"github.com/roach88/worldgraph/internal/metrics"
	"github.com/roach88/worldgraph/internal/server"
	"github.com/roach88/worldgraph/internal/typemap"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the GraphQL API over HTTP",
		Long: `Build the schema from the registered components and serve it.

POST /schema/rebuild picks up components registered after start.

Example:
  worldgraph serve --db ./world.db --listen localhost:8080
  worldgraph serve --config ./worldgraph.yaml --metrics`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(rootOpts, cmd)
		},
	}

	cmd.Flags().String("listen", "", "address to listen on (host:port)")
	cmd.Flags().Bool("metrics", false, "expose Prometheus metrics on /metrics")

	return cmd
}

func serve(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts, cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Errorw("Error closing database", "err", closeErr)
		}
	}()

	srvOpts, err := serverOptions(cfg, logger)
	if err != nil {
		return err
	}
	srv := server.New(st, srvOpts...)

	logWorld(logger, cfg.World)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := srv.Rebuild(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to build schema", err)
	}
	if err := srv.ListenAndRun(ctx, cfg.HTTP.Listen); err != nil {
		return WrapExitError(ExitFailure, "server stopped", err)
	}
	logger.Infow("Server stopped")
	return nil
}

func serverOptions(cfg *config.Config, logger log.Logger) ([]server.Option, error) {
	opts := []server.Option{
		server.WithLogger(logger),
		server.WithCORSOrigins(cfg.HTTP.CORSOrigins...),
	}
	if cfg.Metrics {
		opts = append(opts, server.WithMetrics(metrics.New()))
	}

	parse, err := parseFunc(cfg)
	if err != nil {
		return nil, err
	}
	return append(opts, server.WithParse(parse)), nil
}

// parseFunc returns a cached parser when a cache size is configured.
func parseFunc(cfg *config.Config) (typemap.ParseFunc, error) {
	if cfg.TypemapCacheSize == 0 {
		return typemap.Parse, nil
	}
	cache, err := typemap.NewCache(cfg.TypemapCacheSize)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create type mapping cache", err)
	}
	return cache.Parse, nil
}

func logWorld(logger log.Logger, w config.World) {
	if w.Address.IsZero() && w.RPCURL == "" && w.AccountAddress.IsZero() {
		return
	}
	logger.Infow("World", "address", w.Address.String(), "rpcUrl", w.RPCURL,
		"account", w.AccountAddress.String(), "signer", w.Signer())
}
