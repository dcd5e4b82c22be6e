package schema

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/roach88/worldgraph/internal/graphql/object"
	"github.com/roach88/worldgraph/internal/graphql/types"
	"github.com/roach88/worldgraph/internal/ir"
	"github.com/roach88/worldgraph/internal/typemap"
)

// ErrDuplicateName reports two schema types or root fields with one name.
var ErrDuplicateName = errors.New("duplicate schema name")

// Build assembles objects into one executable schema.
//
// Every object becomes an object type whose plain fields follow its
// FieldTypeMapping; nested fields are added on top and replace object-typed
// mapping fields of the same name. Unions close over the member names they
// declare. Root fields come from each object's Resolvers.
//
// Type names must be unique across objects, unions, scalars and Query.
func Build(objects ...object.Object) (graphql.Schema, error) {
	b := &builder{
		names:   make(map[string]string),
		objects: make(map[string]*graphql.Object),
		outputs: make(map[string]graphql.Output),
	}

	if err := b.declare(objects); err != nil {
		return graphql.Schema{}, err
	}
	if err := b.check(objects); err != nil {
		return graphql.Schema{}, err
	}

	query, err := b.queryFields(objects)
	if err != nil {
		return graphql.Schema{}, err
	}

	schemaTypes := make([]graphql.Type, 0, len(b.objects)+len(types.Custom()))
	for _, s := range types.Custom() {
		schemaTypes = append(schemaTypes, s)
	}
	for _, o := range objects {
		schemaTypes = append(schemaTypes, b.objects[o.TypeName()])
	}

	s, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   types.QueryTypeName,
			Fields: query,
		}),
		Types: schemaTypes,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("build schema: %w", err)
	}
	return s, nil
}

type builder struct {
	names   map[string]string // type name → what declared it
	objects map[string]*graphql.Object
	outputs map[string]graphql.Output
}

func (b *builder) claim(name, owner string) error {
	if prev, taken := b.names[name]; taken {
		return fmt.Errorf("%w: %q declared by %s and %s", ErrDuplicateName, name, prev, owner)
	}
	b.names[name] = owner
	return nil
}

// declare registers every type name and creates the object and union types.
// Object fields are thunks, so types may reference each other in any order.
func (b *builder) declare(objects []object.Object) error {
	for _, n := range []string{"Int", "Float", "Boolean", "String", "ID"} {
		b.names[n] = "GraphQL"
	}
	b.names[types.QueryTypeName] = "schema root"
	for _, s := range types.All() {
		b.names[string(s)] = "scalar registry"
		b.outputs[string(s)] = s.Output()
	}

	for _, o := range objects {
		name := o.TypeName()
		if err := b.claim(name, fmt.Sprintf("object %q", o.Name())); err != nil {
			return err
		}
		obj := graphql.NewObject(graphql.ObjectConfig{
			Name:   name,
			Fields: graphql.FieldsThunk(b.fieldsFor(o)),
		})
		b.objects[name] = obj
		b.outputs[name] = obj
	}

	for _, o := range objects {
		for _, u := range o.Unions() {
			if err := b.claim(u.Name, fmt.Sprintf("union on %q", o.TypeName())); err != nil {
				return err
			}
			members := make([]*graphql.Object, 0, len(u.Types))
			for _, t := range u.Types {
				member, ok := b.objects[t]
				if !ok {
					return fmt.Errorf("union %q: unknown member type %q", u.Name, t)
				}
				members = append(members, member)
			}
			if len(members) == 0 {
				return fmt.Errorf("union %q has no member types", u.Name)
			}
			b.outputs[u.Name] = graphql.NewUnion(graphql.UnionConfig{
				Name:        u.Name,
				Types:       members,
				ResolveType: b.resolveType,
			})
		}
	}
	return nil
}

// check validates field types before the thunks run, since thunks cannot
// report errors.
func (b *builder) check(objects []object.Object) error {
	for _, o := range objects {
		nested := make(map[string]bool)
		for _, nf := range o.NestedFields() {
			if nested[nf.Name] {
				return fmt.Errorf("%w: field %s.%s declared twice", ErrDuplicateName, o.TypeName(), nf.Name)
			}
			nested[nf.Name] = true
			if _, ok := b.outputs[nf.Type]; !ok {
				return fmt.Errorf("field %s.%s: unknown type %q", o.TypeName(), nf.Name, nf.Type)
			}
			if ref, ok := o.FieldTypeMapping().Get(nf.Name); ok && ref.Kind == typemap.KindScalar {
				return fmt.Errorf("%w: field %s.%s is both plain and nested", ErrDuplicateName, o.TypeName(), nf.Name)
			}
		}
		for _, f := range o.FieldTypeMapping().Fields() {
			if f.Type.Kind == typemap.KindObject && !nested[f.Name] {
				return fmt.Errorf("field %s.%s references %q but has no resolver", o.TypeName(), f.Name, f.Type.Name)
			}
			if _, ok := b.outputs[f.Type.Name]; !ok {
				return fmt.Errorf("field %s.%s: unknown type %q", o.TypeName(), f.Name, f.Type.Name)
			}
		}
	}
	return nil
}

func (b *builder) fieldsFor(o object.Object) func() graphql.Fields {
	return func() graphql.Fields {
		fields := graphql.Fields{}
		for _, f := range o.FieldTypeMapping().Fields() {
			if f.Type.Kind != typemap.KindScalar {
				continue
			}
			fields[f.Name] = &graphql.Field{
				Type:    b.outputs[f.Type.Name],
				Resolve: plainResolver(f.Name),
			}
		}
		for _, nf := range o.NestedFields() {
			fields[nf.Name] = &graphql.Field{
				Type:    b.outputs[nf.Type],
				Resolve: nestedResolver(nf.Resolve),
			}
		}
		return fields
	}
}

func (b *builder) resolveType(p graphql.ResolveTypeParams) *graphql.Object {
	switch v := p.Value.(type) {
	case object.TypedValue:
		return b.objects[v.TypeName]
	case *object.TypedValue:
		return b.objects[v.TypeName]
	default:
		return nil
	}
}

func (b *builder) queryFields(objects []object.Object) (graphql.Fields, error) {
	fields := graphql.Fields{}
	owners := make(map[string]string)

	for _, o := range objects {
		for _, r := range o.Resolvers() {
			if prev, taken := owners[r.Field]; taken {
				return nil, fmt.Errorf("%w: root field %q declared by %s and %s", ErrDuplicateName, r.Field, prev, o.TypeName())
			}
			owners[r.Field] = o.TypeName()

			out, ok := b.outputs[r.Type]
			if !ok {
				return nil, fmt.Errorf("root field %q: unknown type %q", r.Field, r.Type)
			}
			args, err := arguments(r)
			if err != nil {
				return nil, err
			}

			fields[r.Field] = &graphql.Field{
				Type:        wrap(out, r),
				Args:        args,
				Description: r.Description,
				Resolve:     rootResolver(r.Resolve),
			}
		}
	}
	if len(fields) == 0 {
		return nil, errors.New("schema has no root fields")
	}
	return fields, nil
}

func wrap(t graphql.Output, r object.Resolver) graphql.Output {
	if r.List {
		t = graphql.NewList(graphql.NewNonNull(t))
	}
	if !r.Nullable {
		t = graphql.NewNonNull(t)
	}
	return t
}

func arguments(r object.Resolver) (graphql.FieldConfigArgument, error) {
	if len(r.Args) == 0 {
		return nil, nil
	}
	args := graphql.FieldConfigArgument{}
	for _, a := range r.Args {
		if !types.IsScalarName(a.Type) {
			return nil, fmt.Errorf("root field %q: argument %q has non-scalar type %q", r.Field, a.Name, a.Type)
		}
		var in graphql.Input = types.ScalarType(a.Type).Output()
		if a.NonNull {
			in = graphql.NewNonNull(in)
		}
		args[a.Name] = &graphql.ArgumentConfig{Type: in}
	}
	return args, nil
}

// valuesOf extracts the field values of a parent resolved by this package's
// resolvers.
func valuesOf(source any) (ir.ValueMapping, bool) {
	switch v := source.(type) {
	case ir.ValueMapping:
		return v, true
	case *ir.ValueMapping:
		if v == nil {
			return ir.ValueMapping{}, false
		}
		return *v, true
	case object.TypedValue:
		return v.Values, true
	case *object.TypedValue:
		if v == nil {
			return ir.ValueMapping{}, false
		}
		return v.Values, true
	default:
		return ir.ValueMapping{}, false
	}
}

func plainResolver(field string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		vm, ok := valuesOf(p.Source)
		if !ok {
			return nil, nil
		}
		v, ok := vm.Get(field)
		if !ok {
			return nil, nil
		}
		return ir.Native(v), nil
	}
}

func nestedResolver(fn object.NestedResolveFunc) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		vm, ok := valuesOf(p.Source)
		if !ok {
			return nil, nil
		}
		v, err := fn(p.Context, vm)
		if err != nil {
			return nil, withCode(err)
		}
		return v, nil
	}
}

func rootResolver(fn object.ResolveFunc) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		v, err := fn(p.Context, p.Args)
		if err != nil {
			return nil, withCode(err)
		}
		return v, nil
	}
}

// codedError exposes an ir.Error code as a GraphQL error extension.
type codedError struct {
	error
	code ir.ErrorCode
}

func (e codedError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(e.code)}
}

func (e codedError) Unwrap() error { return e.error }

func withCode(err error) error {
	var e *ir.Error
	if errors.As(err, &e) {
		return codedError{error: err, code: e.Code}
	}
	return err
}
