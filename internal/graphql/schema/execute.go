package schema

import (
	"context"

	"github.com/graphql-go/graphql"
)

// Request is one GraphQL request.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// Execute runs req against s. Field errors are reported in the result with
// their paths; an ir.Error cause adds its code as the "code" extension.
// Cancelling ctx aborts in-flight store reads.
func Execute(ctx context.Context, s graphql.Schema, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

// ResultMap renders a result as plain maps for encoding: "data" always,
// "errors" when present with message, path and code.
func ResultMap(res *graphql.Result) map[string]any {
	out := map[string]any{"data": res.Data}
	if len(res.Errors) == 0 {
		return out
	}

	errs := make([]any, len(res.Errors))
	for i, e := range res.Errors {
		m := map[string]any{"message": e.Message}
		if len(e.Path) > 0 {
			m["path"] = e.Path
		}
		if code, ok := e.Extensions["code"]; ok {
			m["code"] = code
		}
		errs[i] = m
	}
	out["errors"] = errs
	return out
}
