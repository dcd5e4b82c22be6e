package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/worldgraph/internal/config"
	"github.com/roach88/worldgraph/internal/log"
	"github.com/roach88/worldgraph/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json" | "yaml"
	ConfigFile string

	// Viper overrides the settings source (for testing).
	// If nil, config.New() is used.
	Viper *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the worldgraph CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "worldgraph",
		Short: "GraphQL over indexed world state",
		Long: `worldgraph serves a GraphQL API over the components of a Dojo world
indexed into SQLite. The schema is derived at runtime from the storage
definitions of the registered components.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "YAML configuration file")
	cmd.PersistentFlags().String("db", "", "path to the SQLite database")
	cmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}

// flagKeys maps command line flags to configuration keys. Flags override
// the file and the environment only when set.
var flagKeys = map[string]string{
	"db":        config.DatabasePathKey,
	"log-level": config.LogLevelKey,
	"listen":    config.HTTPListenKey,
	"metrics":   config.MetricsKey,
}

// loadConfig merges the config file, the environment and the flags of cmd.
func loadConfig(opts *RootOptions, cmd *cobra.Command) (*config.Config, error) {
	v := opts.Viper
	if v == nil {
		v = config.New()
	}

	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(v, opts.ConfigFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newLogger writes to stderr so stdout stays parseable.
func newLogger(cfg *config.Config) (*log.Log, error) {
	logger, err := log.NewProductionLogger(cfg.LogLevel)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create logger", err)
	}
	return logger, nil
}

func openStore(cfg *config.Config, logger log.Logger) (*store.Store, error) {
	st, err := store.Open(cfg.Database.Path,
		store.WithMaxOpenConns(cfg.Database.MaxOpenConns),
		store.WithLogger(logger),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
