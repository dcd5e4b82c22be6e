package harness

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/worldgraph/internal/querysql"
	"github.com/roach88/worldgraph/internal/store"
)

// validIdentifier matches the table and column names final_state accepts.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// AssertionContext provides database access for final_state assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertResponsePath:
			err = assertResponsePath(result, assertion)
		case AssertErrorCount:
			err = assertErrorCount(result, assertion)
		case AssertStorageTypes:
			err = assertStorageTypes(result, assertion)
		case AssertFinalState:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires database context", i)
			} else {
				err = assertFinalState(actx.Ctx, actx.Store, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}

func assertResponsePath(result *Result, a Assertion) error {
	response, ok := result.Response(a.Query)
	if !ok {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("response of %s", a.Query), Actual: "query not run"}
	}

	actual, err := lookupPath(response["data"], a.Path)
	if err != nil {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("%s = %v", a.Path, a.Equals), Actual: err.Error()}
	}
	if !valuesEqual(actual, a.Equals) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s = %v", a.Path, a.Equals),
			Actual:   fmt.Sprintf("%s = %v", a.Path, actual),
		}
	}
	return nil
}

func assertErrorCount(result *Result, a Assertion) error {
	response, ok := result.Response(a.Query)
	if !ok {
		return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("response of %s", a.Query), Actual: "query not run"}
	}
	if got := len(errorCodes(response)); got != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s has %d error(s)", a.Query, a.Count),
			Actual:   fmt.Sprintf("%d error(s)", got),
		}
	}
	return nil
}

func assertStorageTypes(result *Result, a Assertion) error {
	if len(a.Types) == 0 && len(result.StorageTypes) == 0 {
		return nil
	}
	if !reflect.DeepEqual(a.Types, result.StorageTypes) {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%v", a.Types),
			Actual:   fmt.Sprintf("%v", result.StorageTypes),
		}
	}
	return nil
}

// lookupPath follows a dotted path through maps and lists.
func lookupPath(data any, path string) (any, error) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[segment]
			if !ok {
				return nil, fmt.Errorf("no field %q", segment)
			}
			current = v
		case []any:
			i, err := strconv.Atoi(segment)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("no index %q in list of %d", segment, len(node))
			}
			current = node[i]
		default:
			return nil, fmt.Errorf("cannot descend into %T at %q", current, segment)
		}
	}
	return current, nil
}

// assertFinalState reads one row of a table and compares the expected
// columns (subset match).
func assertFinalState(ctx context.Context, st *store.Store, a Assertion) error {
	if !validIdentifier.MatchString(a.Table) {
		return fmt.Errorf("final_state: invalid table name %q", a.Table)
	}

	columns := make([]string, 0, len(a.Expect))
	for col := range a.Expect {
		if !validIdentifier.MatchString(col) {
			return fmt.Errorf("final_state: invalid column name %q", col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = querysql.QuoteIdentifier(col)
	}

	where, params, err := buildWhereClause(a.Where)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT %s FROM %s %s LIMIT 1",
		strings.Join(quoted, ", "), querysql.QuoteIdentifier(a.Table), where)

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	err = st.DB().QueryRowContext(ctx, query, params...).Scan(ptrs...)
	if err == sql.ErrNoRows {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s %s", a.Table, formatWhereClause(a.Where)),
			Actual:   "no row",
		}
	}
	if err != nil {
		return fmt.Errorf("final_state: %w", err)
	}

	for i, col := range columns {
		if !stateValuesEqual(a.Expect[col], values[i]) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s.%s = %v", a.Table, col, a.Expect[col]),
				Actual:   fmt.Sprintf("%s.%s = %v", a.Table, col, values[i]),
			}
		}
	}
	return nil
}

// buildWhereClause renders where as a parameterised WHERE clause with
// columns in sorted order.
func buildWhereClause(where map[string]any) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	columns := make([]string, 0, len(where))
	for col := range where {
		if !validIdentifier.MatchString(col) {
			return "", nil, fmt.Errorf("final_state: invalid column name %q", col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	conditions := make([]string, len(columns))
	params := make([]any, len(columns))
	for i, col := range columns {
		conditions[i] = querysql.QuoteIdentifier(col) + " = ?"
		params[i] = where[col]
	}
	return "WHERE " + strings.Join(conditions, " AND "), params, nil
}

func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return ""
	}
	parts := make([]string, 0, len(where))
	for col, v := range where {
		parts = append(parts, fmt.Sprintf("%s=%v", col, v))
	}
	sort.Strings(parts)
	return "where " + strings.Join(parts, ", ")
}

// stateValuesEqual compares expected YAML values with SQLite column values,
// which come back as int64, string, []byte or time.Time.
func stateValuesEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	if b, ok := actual.([]byte); ok {
		actual = string(b)
	}

	switch exp := expected.(type) {
	case string:
		s, ok := actual.(string)
		return ok && exp == s
	case int:
		n, ok := actual.(int64)
		return ok && int64(exp) == n
	case int64:
		n, ok := actual.(int64)
		return ok && exp == n
	case bool:
		n, ok := actual.(int64)
		return ok && exp == (n != 0)
	}
	return reflect.DeepEqual(expected, actual)
}

// matchSubset reports whether actual contains expected: maps may carry
// extra keys, lists must match element by element.
func matchSubset(actual, expected any) bool {
	switch exp := expected.(type) {
	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, v := range exp {
			av, exists := act[k]
			if !exists || !matchSubset(av, v) {
				return false
			}
		}
		return true
	case []any:
		act, ok := actual.([]any)
		if !ok || len(act) != len(exp) {
			return false
		}
		for i := range exp {
			if !matchSubset(act[i], exp[i]) {
				return false
			}
		}
		return true
	}
	return valuesEqual(actual, expected)
}

// valuesEqual compares two scalar values. Integers compare by value
// regardless of width.
func valuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if a, ok := toInt64(actual); ok {
		if e, ok := toInt64(expected); ok {
			return a == e
		}
	}
	return reflect.DeepEqual(actual, expected)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}
