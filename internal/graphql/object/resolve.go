package object

import (
	"context"
	"fmt"

	"github.com/roach88/worldgraph/internal/graphql/types"
	"github.com/roach88/worldgraph/internal/graphql/utils"
	"github.com/roach88/worldgraph/internal/ir"
	"github.com/roach88/worldgraph/internal/queryir"
	"github.com/roach88/worldgraph/internal/querysql"
	"github.com/roach88/worldgraph/internal/typemap"
)

const componentsTable = "components"

// ComponentByID fetches one component row by id.
//
// Surrounding quotes on id are stripped first. Returns NOT_FOUND when no
// row matches and STORE_ERROR when the query fails.
func ComponentByID(ctx context.Context, q Querier, id string) (ir.ValueMapping, error) {
	id = utils.RemoveQuotes(id)
	rows, err := fetch(ctx, q, types.ComponentTypeName, componentMapping, utils.ToSnakeCase, queryir.Select{
		From:   componentsTable,
		Filter: queryir.Eq("id", ir.String(id)),
		Limit:  1,
	})
	if err != nil {
		return ir.ValueMapping{}, err
	}
	if len(rows) == 0 {
		return ir.ValueMapping{}, ir.NewNotFoundError(types.ComponentTypeName, id)
	}
	return rows[0], nil
}

// Components fetches every component row ordered by id.
func Components(ctx context.Context, q Querier) ([]ir.ValueMapping, error) {
	return fetch(ctx, q, types.ComponentTypeName, componentMapping, utils.ToSnakeCase, queryir.Select{
		From:    componentsTable,
		OrderBy: []string{"id"},
	})
}

// StorageByColumn fetches the storage row of typeName whose column equals id.
//
// Columns are selected and decoded in the mapping's declaration order, so
// the result never depends on the physical column order of the table.
// Returns NOT_FOUND when no row matches.
func StorageByColumn(ctx context.Context, q Querier, column ColumnName, id, typeName string, mapping typemap.TypeMapping) (TypedValue, error) {
	id = utils.RemoveQuotes(id)
	rows, err := fetch(ctx, q, typeName, mapping, identity, queryir.Select{
		From:   typeName,
		Filter: queryir.Eq(column.String(), ir.String(id)),
		Limit:  1,
	})
	if err != nil {
		return TypedValue{}, err
	}
	if len(rows) == 0 {
		return TypedValue{}, ir.NewNotFoundError(typeName, id)
	}
	return TypedValue{TypeName: typeName, Values: rows[0]}, nil
}

func identity(s string) string { return s }

// fetch selects the mapping's fields and decodes every returned row.
// column translates a field name to its column name.
func fetch(ctx context.Context, q Querier, typeName string, mapping typemap.TypeMapping, column func(string) string, sel queryir.Select) ([]ir.ValueMapping, error) {
	fields := mapping.Fields()
	sel.Columns = make([]string, len(fields))
	for i, f := range fields {
		sel.Columns[i] = column(f.Name)
	}

	sqlText, params, err := querysql.NewCompiler().Compile(sel)
	if err != nil {
		return nil, ir.NewStoreError(typeName, fmt.Errorf("compile query: %w", err))
	}

	rows, err := q.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, ir.NewStoreError(typeName, err)
	}
	defer rows.Close()

	var out []ir.ValueMapping
	raw := make([]any, len(fields))
	dest := make([]any, len(fields))
	for i := range raw {
		dest[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, ir.NewStoreError(typeName, err)
		}
		vm, err := decodeRow(typeName, fields, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, vm)
	}
	if err := rows.Err(); err != nil {
		return nil, ir.NewStoreError(typeName, err)
	}
	return out, nil
}

func decodeRow(typeName string, fields []typemap.Field, raw []any) (ir.ValueMapping, error) {
	var vm ir.ValueMapping
	for i, f := range fields {
		v, err := decodeValue(f.Name, f.Type, raw[i])
		if err != nil {
			if e, ok := err.(*ir.Error); ok {
				e.TypeName = typeName
			}
			return ir.ValueMapping{}, err
		}
		vm.Set(f.Name, v)
	}
	return vm, nil
}
