package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/graphql-go/graphql"

	gqlschema "github.com/roach88/worldgraph/internal/graphql/schema"
	"github.com/roach88/worldgraph/internal/ir"
	"github.com/roach88/worldgraph/internal/log"
	"github.com/roach88/worldgraph/internal/store"
)

// epoch stamps components that do not carry created_at.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Harness holds the database of one scenario run.
type Harness struct {
	store  *store.Store
	schema graphql.Schema
	logger log.Logger
}

// Run executes a scenario against a fresh database and returns the result.
//
// Execution flow:
//  1. Create a database in a temporary directory
//  2. Register components and write storage rows
//  3. Discover storage types and build the schema
//  4. Execute query steps, checking expect clauses
//  5. Evaluate assertions
//
// Setup failures are returned as errors; failed expectations are recorded
// in the result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "worldgraph-scenario-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}
	defer os.RemoveAll(dir)

	st, err := store.Open(filepath.Join(dir, "world.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	defer st.Close()

	h := &Harness{store: st, logger: log.NewNop()}

	if err := h.setup(ctx, scenario); err != nil {
		return nil, err
	}

	result := NewResult()
	objects, err := gqlschema.Discover(ctx, st, nil, h.logger)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	if h.schema, err = gqlschema.Build(objects...); err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	for _, o := range objects[1:] {
		result.StorageTypes = append(result.StorageTypes, o.TypeName())
	}

	for _, q := range scenario.Queries {
		h.executeQuery(ctx, q, result)
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) setup(ctx context.Context, scenario *Scenario) error {
	for i, c := range scenario.Components {
		createdAt := epoch.Add(time.Duration(i) * time.Second)
		if c.CreatedAt != nil {
			createdAt = *c.CreatedAt
		}
		err := h.store.RegisterComponent(ctx, store.Component{
			ID:                c.ID,
			Name:              c.Name,
			Address:           c.Address,
			ClassHash:         c.ClassHash,
			TransactionHash:   c.TransactionHash,
			StorageDefinition: c.StorageDefinition,
			CreatedAt:         createdAt,
		})
		if err != nil {
			return fmt.Errorf("components[%d] (%s): %w", i, c.Name, err)
		}
	}

	for i, s := range scenario.Storage {
		values, err := convertValues(s.Values)
		if err != nil {
			return fmt.Errorf("storage[%d]: %w", i, err)
		}
		if err := h.store.SetStorage(ctx, s.Component, values); err != nil {
			return fmt.Errorf("storage[%d] (%s): %w", i, s.Component, err)
		}
	}
	return nil
}

func (h *Harness) executeQuery(ctx context.Context, q QueryStep, result *Result) {
	res := gqlschema.Execute(ctx, h.schema, gqlschema.Request{
		Query:     q.Query,
		Variables: q.Variables,
	})
	response := gqlschema.ResultMap(res)
	result.Queries = append(result.Queries, QueryResult{Name: q.Name, Response: response})

	codes := errorCodes(response)
	if q.Expect == nil {
		if len(codes) > 0 {
			result.AddError(fmt.Sprintf("query %s: unexpected errors %v", q.Name, codes))
		}
		return
	}

	if !slices.Equal(codes, q.Expect.Errors) {
		result.AddError(fmt.Sprintf("query %s: expected errors %v, got %v", q.Name, q.Expect.Errors, codes))
	}
	if q.Expect.Data != nil && !matchSubset(response["data"], q.Expect.Data) {
		result.AddError(fmt.Sprintf("query %s: data mismatch: expected %v, got %v", q.Name, q.Expect.Data, response["data"]))
	}
}

// errorCodes lists the code of each response error. Errors raised by the
// GraphQL layer itself (syntax, validation) carry no code and are reported
// as GRAPHQL_ERROR.
func errorCodes(response map[string]any) []string {
	errs, _ := response["errors"].([]any)
	codes := make([]string, 0, len(errs))
	for _, e := range errs {
		m, _ := e.(map[string]any)
		code, ok := m["code"].(string)
		if !ok {
			code = "GRAPHQL_ERROR"
		}
		codes = append(codes, code)
	}
	return codes
}

// convertValues turns YAML scalars into a ValueMapping with sorted keys.
func convertValues(values map[string]any) (ir.ValueMapping, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := ir.NewValueMapping()
	for _, k := range keys {
		v, err := ir.FromNative(values[k])
		if err != nil {
			return ir.ValueMapping{}, fmt.Errorf("field %q: %w", k, err)
		}
		out.Set(k, v)
	}
	return out, nil
}
