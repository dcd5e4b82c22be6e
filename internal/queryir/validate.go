package queryir

import (
	"errors"
	"fmt"

	"github.com/roach88/worldgraph/internal/ir"
)

// Validate checks that a query is well formed before compilation.
//
// Rules:
//  1. From names a table
//  2. Columns is explicit (no SELECT *) and every name is non-empty
//  3. Columns contains no duplicates
//  4. Predicates reference non-empty fields and never compare to NULL
//  5. Limit is not negative
//
// All violations are reported together. Validate is a pure function.
func Validate(query Query) error {
	v := &validator{}
	v.validateQuery(query)
	return errors.Join(v.errs...)
}

type validator struct {
	errs []error
}

func (v *validator) addf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		if query == nil {
			v.addf("nil query")
			return
		}
		v.validateSelect(*query)
	case nil:
		v.addf("nil query")
	default:
		v.addf("unknown query type %T", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if sel.From == "" {
		v.addf("select has no table")
	}
	if len(sel.Columns) == 0 {
		v.addf("select from %q has no columns", sel.From)
	}

	seen := make(map[string]bool, len(sel.Columns))
	for i, c := range sel.Columns {
		if c == "" {
			v.addf("column %d of %q is empty", i, sel.From)
			continue
		}
		if seen[c] {
			v.addf("column %q selected twice from %q", c, sel.From)
		}
		seen[c] = true
	}

	for _, c := range sel.OrderBy {
		if c == "" {
			v.addf("empty order column on %q", sel.From)
		}
	}
	if sel.Limit < 0 {
		v.addf("negative limit %d", sel.Limit)
	}

	v.validatePredicate(sel.Filter)
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
	case Equals:
		v.validateEquals(pred)
	case *Equals:
		v.validateEquals(*pred)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addf("unknown predicate type %T", p)
	}
}

func (v *validator) validateEquals(eq Equals) {
	if eq.Field == "" {
		v.addf("equals predicate has no field")
	}
	switch eq.Value.(type) {
	case nil, ir.Null:
		v.addf("field %q compared to NULL", eq.Field)
	}
}
