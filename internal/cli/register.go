package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/worldgraph/internal/store"
)

// RegisterOptions holds flags for the register command.
type RegisterOptions struct {
	*RootOptions
	ID              string
	Name            string
	Address         string
	ClassHash       string
	TransactionHash string
	Definition      string
	CreatedAt       string
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RegisterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a component and create its storage table",
		Long: `Register a component the way the indexer does when it sees a
component registration event. Registering the same component twice is a
no-op; a different component with the same id or name is rejected.

Example:
  worldgraph register --db ./world.db --id 0x1 --name Position \
    --address 0x12 --class-hash 0x34 --tx-hash 0x56 \
    --definition 'x: Felt, y: Felt'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return registerComponent(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "component id (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "component name (required)")
	cmd.Flags().StringVar(&opts.Address, "address", "", "component contract address (required)")
	cmd.Flags().StringVar(&opts.ClassHash, "class-hash", "", "component class hash (required)")
	cmd.Flags().StringVar(&opts.TransactionHash, "tx-hash", "", "registration transaction hash (required)")
	cmd.Flags().StringVar(&opts.Definition, "definition", "", "storage definition, e.g. 'x: Felt, y: Felt' (required)")
	cmd.Flags().StringVar(&opts.CreatedAt, "created-at", "", "registration time (RFC3339, default now)")
	for _, name := range []string{"id", "name", "address", "class-hash", "tx-hash", "definition"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func registerComponent(opts *RegisterOptions, cmd *cobra.Command) error {
	c := store.Component{
		ID:                opts.ID,
		Name:              opts.Name,
		Address:           opts.Address,
		ClassHash:         opts.ClassHash,
		TransactionHash:   opts.TransactionHash,
		StorageDefinition: opts.Definition,
	}
	if opts.CreatedAt != "" {
		t, err := time.Parse(time.RFC3339, opts.CreatedAt)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --created-at", err)
		}
		c.CreatedAt = t
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

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if err := st.RegisterComponent(ctx, c); err != nil {
		_ = formatter.Error(errorCode(err, "REGISTER_FAILED"), err.Error(), nil)
		return WrapExitError(ExitFailure, "register failed", err)
	}

	registered, err := st.GetComponent(ctx, opts.ID)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read back component", err)
	}
	if opts.Format == "text" {
		return formatter.Success(fmt.Sprintf("Registered %s (%s) as %s", registered.Name, registered.ID, registered.TypeName()))
	}
	return formatter.Success(componentView(registered))
}

// componentView is the JSON/YAML shape of a component.
func componentView(c store.Component) map[string]any {
	return map[string]any{
		"id":                c.ID,
		"name":              c.Name,
		"typeName":          c.TypeName(),
		"address":           c.Address,
		"classHash":         c.ClassHash,
		"transactionHash":   c.TransactionHash,
		"storageDefinition": c.StorageDefinition,
		"createdAt":         c.CreatedAt.UTC().Format(time.RFC3339),
	}
}
