package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/graphql-go/graphql"
	"github.com/spf13/cobra"

	"github.com/roach88/worldgraph/internal/config"
	"github.com/roach88/worldgraph/internal/graphql/object"
	gqlschema "github.com/roach88/worldgraph/internal/graphql/schema"
	"github.com/roach88/worldgraph/internal/log"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	File          string
	Variables     string
	OperationName string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query [graphql]",
		Short: "Run one GraphQL query against the database",
		Long: `Run one GraphQL query against the database without starting a server.

The query comes from the argument or from --file. Exits with 1 when the
result carries errors.

Example:
  worldgraph query --db ./world.db '{ components { id name } }'
  worldgraph query --db ./world.db --file q.graphql --variables '{"id":"0x1"}'`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "read the query from a file")
	cmd.Flags().StringVar(&opts.Variables, "variables", "", "variables as a JSON object")
	cmd.Flags().StringVar(&opts.OperationName, "operation", "", "operation name")

	return cmd
}

func runQuery(opts *QueryOptions, args []string, cmd *cobra.Command) error {
	req, err := queryRequest(opts, args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.RootOptions, cmd)
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
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sch, _, err := loadSchema(ctx, st, cfg, logger)
	if err != nil {
		return err
	}

	res := gqlschema.Execute(ctx, sch, req)
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if err := formatter.Result(gqlschema.ResultMap(res)); err != nil {
		return err
	}
	if res.HasErrors() {
		return NewExitError(ExitFailure, fmt.Sprintf("query returned %d error(s)", len(res.Errors)))
	}
	return nil
}

func queryRequest(opts *QueryOptions, args []string) (gqlschema.Request, error) {
	req := gqlschema.Request{OperationName: opts.OperationName}

	switch {
	case len(args) == 1 && opts.File != "":
		return req, NewExitError(ExitCommandError, "give the query as an argument or with --file, not both")
	case len(args) == 1:
		req.Query = args[0]
	case opts.File != "":
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return req, WrapExitError(ExitCommandError, "failed to read query file", err)
		}
		req.Query = string(data)
	default:
		return req, NewExitError(ExitCommandError, "no query given")
	}

	if opts.Variables != "" {
		if err := json.Unmarshal([]byte(opts.Variables), &req.Variables); err != nil {
			return req, WrapExitError(ExitCommandError, "invalid --variables JSON", err)
		}
	}
	return req, nil
}

// loadSchema discovers the storage types in src and builds the schema.
func loadSchema(ctx context.Context, src gqlschema.Source, cfg *config.Config, logger log.Logger) (graphql.Schema, []object.Object, error) {
	parse, err := parseFunc(cfg)
	if err != nil {
		return graphql.Schema{}, nil, err
	}
	objects, err := gqlschema.Discover(ctx, src, parse, logger)
	if err != nil {
		return graphql.Schema{}, nil, WrapExitError(ExitCommandError, "failed to discover storage types", err)
	}
	sch, err := gqlschema.Build(objects...)
	if err != nil {
		return graphql.Schema{}, nil, WrapExitError(ExitCommandError, "failed to build schema", err)
	}
	return sch, objects, nil
}
