package object

import (
	"context"
	"fmt"

	"github.com/roach88/worldgraph/internal/graphql/types"
	"github.com/roach88/worldgraph/internal/graphql/utils"
	"github.com/roach88/worldgraph/internal/ir"
	"github.com/roach88/worldgraph/internal/typemap"
)

// StorageObject exposes the storage rows of one component type.
type StorageObject struct {
	pool      Pool
	fieldName string
	typeName  string
	mapping   typemap.TypeMapping
}

var _ Object = (*StorageObject)(nil)

// NewStorageObject derives a storage object from a component name and its
// storage definition.
func NewStorageObject(pool Pool, parse typemap.ParseFunc, name, definition string) (*StorageObject, error) {
	fieldName, typeName := utils.FormatName(name)
	if typeName == "" {
		return nil, fmt.Errorf("component name %q yields no type name", name)
	}
	if parse == nil {
		parse = typemap.Parse
	}
	mapping, err := parse(definition, typeName, typemap.WithObjectTypes(types.ComponentTypeName))
	if err != nil {
		return nil, err
	}
	return &StorageObject{pool: pool, fieldName: fieldName, typeName: typeName, mapping: mapping}, nil
}

func (o *StorageObject) Name() string     { return o.fieldName }
func (o *StorageObject) TypeName() string { return o.typeName }

func (o *StorageObject) FieldTypeMapping() typemap.TypeMapping {
	return o.mapping
}

func (o *StorageObject) Unions() []UnionDef { return nil }

// NestedFields resolves each object-typed field to the referenced
// component. Dangling references resolve to null.
func (o *StorageObject) NestedFields() []NestedField {
	var out []NestedField
	for _, f := range o.mapping.Fields() {
		if f.Type.Kind != typemap.KindObject {
			continue
		}
		field := f.Name
		out = append(out, NestedField{
			Name: field,
			Type: f.Type.Name,
			Resolve: func(ctx context.Context, parent ir.ValueMapping) (any, error) {
				v, ok := parent.Get(field)
				if !ok {
					return nil, ir.NewFieldMissingError(field)
				}
				id, isString := v.(ir.String)
				if !isString {
					return nil, nil
				}
				vm, err := withConn(ctx, o.pool, types.ComponentTypeName, func(q Querier) (ir.ValueMapping, error) {
					return ComponentByID(ctx, q, string(id))
				})
				if ir.IsNotFound(err) {
					return nil, nil
				}
				if err != nil {
					return nil, err
				}
				return vm, nil
			},
		})
	}
	return out
}

func (o *StorageObject) Resolvers() []Resolver {
	return []Resolver{{
		Field:       o.fieldName,
		Type:        o.typeName,
		Nullable:    true,
		Args:        []Argument{{Name: "componentId", Type: string(types.ID), NonNull: true}},
		Description: fmt.Sprintf("Storage of the %s component.", o.typeName),
		Resolve:     o.resolve,
	}}
}

func (o *StorageObject) resolve(ctx context.Context, args map[string]any) (any, error) {
	id, ok := args["componentId"].(string)
	if !ok {
		return nil, ir.NewTypeMismatchError("componentId", "string", fmt.Sprintf("%T", args["componentId"]))
	}
	tv, err := withConn(ctx, o.pool, o.typeName, func(q Querier) (TypedValue, error) {
		return StorageByColumn(ctx, q, ComponentID, id, o.typeName, o.mapping)
	})
	if ir.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tv, nil
}
