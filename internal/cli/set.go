package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/worldgraph/internal/ir"
)

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <component-id> <field=value>...",
		Short: "Write storage values of a component",
		Long: `Upsert the storage row of a component. Fields not named keep their
current value. A value of null clears the field; decimal integers are
written as numbers, everything else as text.

Example:
  worldgraph set --db ./world.db 0x1 x=0x0a y=20`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return setStorage(rootOpts, args[0], args[1:], cmd)
		},
	}
	return cmd
}

func setStorage(opts *RootOptions, componentID string, assignments []string, cmd *cobra.Command) error {
	values, err := parseAssignments(assignments)
	if err != nil {
		return err
	}

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
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if err := st.SetStorage(ctx, componentID, values); err != nil {
		_ = formatter.Error(errorCode(err, "SET_FAILED"), err.Error(), nil)
		return WrapExitError(ExitFailure, "set failed", err)
	}

	if opts.Format == "text" {
		return formatter.Success(fmt.Sprintf("Updated %d field(s) of %s", values.Len(), componentID))
	}
	return formatter.Success(map[string]any{"componentId": componentID, "fields": values.Keys()})
}

// parseAssignments turns field=value arguments into an ordered mapping.
func parseAssignments(assignments []string) (ir.ValueMapping, error) {
	values := ir.NewValueMapping()
	for _, a := range assignments {
		field, raw, ok := strings.Cut(a, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return ir.ValueMapping{}, NewExitError(ExitCommandError, fmt.Sprintf("invalid assignment %q: want field=value", a))
		}
		if _, dup := values.Get(field); dup {
			return ir.ValueMapping{}, NewExitError(ExitCommandError, fmt.Sprintf("field %q assigned twice", field))
		}
		values.Set(field, parseValue(raw))
	}
	return values, nil
}

func parseValue(raw string) ir.Value {
	if raw == "null" {
		return ir.Null{}
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ir.Int(n)
	}
	return ir.String(raw)
}
