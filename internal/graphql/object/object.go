// Package object defines the schema-facing object types and the resolvers
// that read them from the store.
//
// Every exposed type is an Object: a name, an ordered field mapping, the
// unions it introduces, fields resolved from the parent value (NestedFields)
// and the root query fields it contributes (Resolvers). The schema package
// assembles Objects into one graphql.Schema without knowing their concrete
// types.
package object

import (
	"context"
	"database/sql"

	"github.com/roach88/worldgraph/internal/ir"
	"github.com/roach88/worldgraph/internal/typemap"
)

// Object is a schema object type.
type Object interface {
	// Name is the root field name (camelCase).
	Name() string
	// TypeName is the schema type name (PascalCase).
	TypeName() string
	// FieldTypeMapping lists the plain fields in declaration order.
	FieldTypeMapping() typemap.TypeMapping
	// Unions lists union types this object introduces.
	Unions() []UnionDef
	// NestedFields lists fields resolved from the parent value.
	NestedFields() []NestedField
	// Resolvers lists the root query fields.
	Resolvers() []Resolver
}

// UnionDef declares a union over object type names.
type UnionDef struct {
	Name  string
	Types []string
}

// ResolveFunc resolves a root field from its arguments.
type ResolveFunc func(ctx context.Context, args map[string]any) (any, error)

// NestedResolveFunc resolves a field from its parent value.
type NestedResolveFunc func(ctx context.Context, parent ir.ValueMapping) (any, error)

// Argument is one root field argument.
type Argument struct {
	Name    string
	Type    string // scalar type name
	NonNull bool
}

// Resolver is one root query field.
type Resolver struct {
	Field       string
	Type        string // object, union or scalar type name
	Nullable    bool
	List        bool // list of non-null Type
	Args        []Argument
	Description string
	Resolve     ResolveFunc
}

// NestedField is a field whose value is computed from the parent.
type NestedField struct {
	Name    string
	Type    string
	Resolve NestedResolveFunc
}

// TypedValue is a decoded storage row tagged with its type name, so a union
// can select its member.
type TypedValue struct {
	TypeName string
	Values   ir.ValueMapping
}

// Querier runs queries on one connection. *sql.Conn, *sql.DB and *sql.Tx
// all satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Pool hands out scoped connections. *store.Store satisfies it.
type Pool interface {
	Acquire(ctx context.Context) (*sql.Conn, error)
}

// withConn runs fn on a connection checked out for this call only.
func withConn[T any](ctx context.Context, pool Pool, typeName string, fn func(q Querier) (T, error)) (T, error) {
	var zero T
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return zero, ir.NewStoreError(typeName, err)
	}
	defer conn.Close()
	return fn(conn)
}
