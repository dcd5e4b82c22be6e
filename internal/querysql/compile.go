// Package querysql compiles queryir queries to parameterized SQLite SQL.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/worldgraph/internal/ir"
	"github.com/roach88/worldgraph/internal/queryir"
)

// Compiler compiles QueryIR to parameterized SQL for SQLite.
//
// Identifiers are always double-quoted and values are always bound as
// parameters, so table and column names derived from stored component
// names can never change the shape of a statement.
type Compiler struct{}

// NewCompiler creates a new Compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile validates q and converts it to parameterized SQL.
// Returns (sql, params, error).
func (c *Compiler) Compile(q queryir.Query) (string, []any, error) {
	if err := queryir.Validate(q); err != nil {
		return "", nil, fmt.Errorf("invalid query: %w", err)
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *Compiler) compileSelect(q queryir.Select) (string, []any, error) {
	cols := make([]string, len(q.Columns))
	for i, col := range q.Columns {
		cols[i] = QuoteIdentifier(col)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), QuoteIdentifier(q.From))

	var params []any
	if q.Filter != nil {
		where, whereParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = whereParams
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(c.orderKey(q))

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
	}

	return b.String(), params, nil
}

// orderKey returns the ORDER BY list. Every statement is ordered so result
// sets are deterministic; without explicit columns rows come back in
// insertion order (all tables managed by the store are rowid tables).
func (c *Compiler) orderKey(q queryir.Select) string {
	if len(q.OrderBy) == 0 {
		return "rowid ASC"
	}
	parts := make([]string, len(q.OrderBy))
	for i, col := range q.OrderBy {
		parts[i] = QuoteIdentifier(col) + " COLLATE BINARY ASC"
	}
	return strings.Join(parts, ", ")
}

func (c *Compiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case queryir.Equals:
		return c.compileEquals(pred)
	case *queryir.Equals:
		return c.compileEquals(*pred)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *Compiler) compileEquals(eq queryir.Equals) (string, []any, error) {
	param := ir.Native(eq.Value)
	if param == nil {
		return "", nil, fmt.Errorf("field %q: cannot bind NULL", eq.Field)
	}
	return QuoteIdentifier(eq.Field) + " = ?", []any{param}, nil
}

func (c *Compiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, pred := range and.Predicates {
		sql, predParams, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, predParams...)
	}
	return strings.Join(parts, " AND "), params, nil
}

// QuoteIdentifier renders name as a double-quoted SQLite identifier,
// doubling any embedded quote.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
