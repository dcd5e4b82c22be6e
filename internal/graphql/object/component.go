package object

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/worldgraph/internal/graphql/types"
	"github.com/roach88/worldgraph/internal/graphql/utils"
	"github.com/roach88/worldgraph/internal/ir"
	"github.com/roach88/worldgraph/internal/typemap"
)

// componentMapping is the fixed field set of a component row.
var componentMapping = typemap.MustNew(types.ComponentTypeName,
	typemap.Field{Name: "id", Type: typemap.Scalar(types.ID)},
	typemap.Field{Name: "name", Type: typemap.Scalar(types.String)},
	typemap.Field{Name: "address", Type: typemap.Scalar(types.Address)},
	typemap.Field{Name: "classHash", Type: typemap.Scalar(types.Felt)},
	typemap.Field{Name: "transactionHash", Type: typemap.Scalar(types.Felt)},
	typemap.Field{Name: "storageDefinition", Type: typemap.Scalar(types.String)},
	typemap.Field{Name: "createdAt", Type: typemap.Scalar(types.DateTime)},
)

// ComponentMapping returns the fixed field set of a component.
func ComponentMapping() typemap.TypeMapping {
	return componentMapping
}

// ComponentObject exposes component rows and their polymorphic storage.
type ComponentObject struct {
	pool         Pool
	parse        typemap.ParseFunc
	storageTypes []string
}

var _ Object = (*ComponentObject)(nil)

// NewComponentObject creates the component object. storageTypes are the
// storage type names known at assembly time; they become the members of the
// Storage union. parse derives a storage mapping from a definition and may
// be typemap.Parse or a cache.
func NewComponentObject(pool Pool, parse typemap.ParseFunc, storageTypes []string) *ComponentObject {
	st := slices.Clone(storageTypes)
	slices.Sort(st)
	if parse == nil {
		parse = typemap.Parse
	}
	return &ComponentObject{pool: pool, parse: parse, storageTypes: slices.Compact(st)}
}

func (o *ComponentObject) Name() string     { return "component" }
func (o *ComponentObject) TypeName() string { return types.ComponentTypeName }

func (o *ComponentObject) FieldTypeMapping() typemap.TypeMapping {
	return componentMapping
}

// Unions returns the Storage union, or nothing when no storage types exist.
func (o *ComponentObject) Unions() []UnionDef {
	if len(o.storageTypes) == 0 {
		return nil
	}
	return []UnionDef{{Name: types.StorageUnionName, Types: slices.Clone(o.storageTypes)}}
}

// NestedFields returns the storage field, present only with the union.
func (o *ComponentObject) NestedFields() []NestedField {
	if len(o.storageTypes) == 0 {
		return nil
	}
	return []NestedField{{
		Name:    "storage",
		Type:    types.StorageUnionName,
		Resolve: o.resolveStorage,
	}}
}

func (o *ComponentObject) Resolvers() []Resolver {
	return []Resolver{
		{
			Field:       "component",
			Type:        types.ComponentTypeName,
			Nullable:    true,
			Args:        []Argument{{Name: "id", Type: string(types.ID), NonNull: true}},
			Description: "Look up one component by id.",
			Resolve:     o.resolveComponent,
		},
		{
			Field:       "components",
			Type:        types.ComponentTypeName,
			List:        true,
			Description: "Every component ordered by id.",
			Resolve:     o.resolveComponents,
		},
	}
}

func (o *ComponentObject) resolveComponent(ctx context.Context, args map[string]any) (any, error) {
	id, ok := args["id"].(string)
	if !ok {
		return nil, ir.NewTypeMismatchError("id", "string", fmt.Sprintf("%T", args["id"]))
	}
	vm, err := withConn(ctx, o.pool, types.ComponentTypeName, func(q Querier) (ir.ValueMapping, error) {
		return ComponentByID(ctx, q, id)
	})
	if ir.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return vm, nil
}

func (o *ComponentObject) resolveComponents(ctx context.Context, _ map[string]any) (any, error) {
	list, err := withConn(ctx, o.pool, types.ComponentTypeName, func(q Querier) ([]ir.ValueMapping, error) {
		return Components(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []ir.ValueMapping{}
	}
	return list, nil
}

// resolveStorage re-derives the storage mapping from the parent's
// definition and fetches the matching row. A missing row resolves to null.
func (o *ComponentObject) resolveStorage(ctx context.Context, parent ir.ValueMapping) (any, error) {
	id, err := ir.Extract[string](parent, "id")
	if err != nil {
		return nil, err
	}
	definition, err := ir.Extract[string](parent, "storageDefinition")
	if err != nil {
		return nil, err
	}
	name, err := ir.Extract[string](parent, "name")
	if err != nil {
		return nil, err
	}

	_, typeName := utils.FormatName(name)
	if _, known := slices.BinarySearch(o.storageTypes, typeName); !known {
		return nil, fmt.Errorf("storage type %q is not part of the current schema", typeName)
	}

	mapping, err := o.parse(definition, typeName, typemap.WithObjectTypes(types.ComponentTypeName))
	if err != nil {
		return nil, err
	}

	tv, err := withConn(ctx, o.pool, typeName, func(q Querier) (TypedValue, error) {
		return StorageByColumn(ctx, q, ComponentID, id, typeName, mapping)
	})
	if ir.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tv, nil
}
