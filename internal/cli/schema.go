package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/worldgraph/internal/config"
	"github.com/roach88/worldgraph/internal/graphql/object"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show the schema derived from the database",
		Long: `Show the configured world and the object types, unions and root
fields the server would expose for the current database.

Example:
  worldgraph schema --db ./world.db
  worldgraph schema --db ./world.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showSchema(rootOpts, cmd)
		},
	}
	return cmd
}

// SchemaView describes a built schema.
type SchemaView struct {
	World  WorldView   `json:"world" yaml:"world"`
	Types  []TypeView  `json:"types" yaml:"types"`
	Unions []UnionView `json:"unions,omitempty" yaml:"unions,omitempty"`
	Query  []FieldView `json:"query" yaml:"query"`
}

type WorldView struct {
	Address string `json:"address" yaml:"address"`
	RPCURL  string `json:"rpcUrl,omitempty" yaml:"rpcUrl,omitempty"`
	Account string `json:"account,omitempty" yaml:"account,omitempty"`
	Signer  string `json:"signer,omitempty" yaml:"signer,omitempty"`
}

func newWorldView(w config.World) WorldView {
	view := WorldView{Address: w.Address.String(), RPCURL: w.RPCURL, Signer: w.Signer()}
	if !w.AccountAddress.IsZero() {
		view.Account = w.AccountAddress.String()
	}
	return view
}

type TypeView struct {
	Name   string      `json:"name" yaml:"name"`
	Fields []FieldView `json:"fields" yaml:"fields"`
}

type UnionView struct {
	Name  string   `json:"name" yaml:"name"`
	Types []string `json:"types" yaml:"types"`
}

type FieldView struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

func showSchema(opts *RootOptions, cmd *cobra.Command) error {
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

	_, objects, err := loadSchema(ctx, st, cfg, logger)
	if err != nil {
		return err
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(newSchemaView(cfg.World, objects))
}

func newSchemaView(w config.World, objects []object.Object) SchemaView {
	view := SchemaView{
		World: newWorldView(w),
	}

	for _, o := range objects {
		t := TypeView{Name: o.TypeName()}
		for _, f := range o.FieldTypeMapping().Fields() {
			t.Fields = append(t.Fields, FieldView{Name: f.Name, Type: f.Type.Name})
		}
		for _, n := range o.NestedFields() {
			if _, plain := o.FieldTypeMapping().Get(n.Name); plain {
				continue
			}
			t.Fields = append(t.Fields, FieldView{Name: n.Name, Type: n.Type})
		}
		view.Types = append(view.Types, t)

		for _, u := range o.Unions() {
			view.Unions = append(view.Unions, UnionView{Name: u.Name, Types: u.Types})
		}
		for _, r := range o.Resolvers() {
			view.Query = append(view.Query, FieldView{Name: r.Field + argList(r.Args), Type: fieldType(r)})
		}
	}
	return view
}

func argList(args []object.Argument) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Name + ": " + a.Type
		if a.NonNull {
			parts[i] += "!"
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func fieldType(r object.Resolver) string {
	t := r.Type
	if r.List {
		t = "[" + t + "!]"
	}
	if !r.Nullable {
		t += "!"
	}
	return t
}

// String renders the view in schema definition style.
func (v SchemaView) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# world %s", v.World.Address)
	if v.World.RPCURL != "" {
		fmt.Fprintf(&b, " via %s", v.World.RPCURL)
	}
	b.WriteString("\n")
	if v.World.Account != "" {
		fmt.Fprintf(&b, "# account %s", v.World.Account)
		if v.World.Signer != "" {
			fmt.Fprintf(&b, " (%s)", v.World.Signer)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString("type Query {\n")
	for _, f := range v.Query {
		fmt.Fprintf(&b, "  %s: %s\n", f.Name, f.Type)
	}
	b.WriteString("}\n")

	for _, t := range v.Types {
		fmt.Fprintf(&b, "\ntype %s {\n", t.Name)
		for _, f := range t.Fields {
			fmt.Fprintf(&b, "  %s: %s\n", f.Name, f.Type)
		}
		b.WriteString("}\n")
	}
	for _, u := range v.Unions {
		fmt.Fprintf(&b, "\nunion %s = %s\n", u.Name, strings.Join(u.Types, " | "))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
