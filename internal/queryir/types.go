package queryir

import "github.com/roach88/worldgraph/internal/ir"

// Query represents an abstract read.
//
// This is a sealed interface - only types in this package implement it.
type Query interface {
	queryNode()
}

// Predicate represents a filter condition.
//
// This is a sealed interface - only types in this package implement it.
//
// Predicate types:
//   - Equals: column = literal_value
//   - And: all predicates must be true
type Predicate interface {
	predicateNode()
}

// Select reads named columns of one table.
//
// Semantics:
//
//	SELECT <columns> FROM <from> WHERE <filter> ORDER BY <order> LIMIT <limit>
//
// Columns are returned in the order given, so callers can decode rows
// positionally without depending on the physical column order of the table.
//
// Example:
//
//	Select{
//	  From:    "Position",
//	  Columns: []string{"x", "y"},
//	  Filter:  Equals{Field: "component_id", Value: ir.String("0x1")},
//	  Limit:   1,
//	}
type Select struct {
	From    string    // Table name, unquoted
	Columns []string  // Explicit column list, unquoted
	Filter  Predicate // WHERE conditions (nil = no filter)
	OrderBy []string  // Ascending sort columns (empty = insertion order)
	Limit   int       // Row limit (0 = unlimited)
}

func (Select) queryNode() {}

// Equals represents a column-equals-literal predicate.
//
//	<field> = <value>
//
// Comparing against ir.Null never matches in SQL; Validate rejects it.
type Equals struct {
	Field string
	Value ir.Value
}

func (Equals) predicateNode() {}

// And represents a conjunction of predicates.
// An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Eq is shorthand for Equals.
func Eq(field string, value ir.Value) Equals {
	return Equals{Field: field, Value: value}
}
