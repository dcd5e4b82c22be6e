package typemap

import (
	"regexp"
	"strings"

	"github.com/roach88/worldgraph/internal/graphql/types"
	"github.com/roach88/worldgraph/internal/ir"
)

// Kind distinguishes scalar references from object references.
type Kind int

const (
	// KindScalar references an entry of the scalar registry.
	KindScalar Kind = iota
	// KindObject references another object type by name.
	KindObject
)

// TypeRef is the declared type of one field.
type TypeRef struct {
	Kind Kind
	Name string // scalar name or object type name
}

// Scalar returns a scalar reference.
func Scalar(s types.ScalarType) TypeRef {
	return TypeRef{Kind: KindScalar, Name: string(s)}
}

// Object returns an object reference.
func Object(typeName string) TypeRef {
	return TypeRef{Kind: KindObject, Name: typeName}
}

// ScalarType returns the scalar kind for scalar references.
func (r TypeRef) ScalarType() (types.ScalarType, bool) {
	if r.Kind != KindScalar {
		return "", false
	}
	return types.ScalarType(r.Name), true
}

// String implements fmt.Stringer.
func (r TypeRef) String() string {
	return r.Name
}

// Field is one entry of a TypeMapping.
type Field struct {
	Name string
	Type TypeRef
}

// TypeMapping is an ordered mapping from unique field name to TypeRef.
//
// A TypeMapping is immutable once built, so it can be shared freely
// between goroutines and cache entries.
type TypeMapping struct {
	fields []Field
	index  map[string]int
}

// New builds a TypeMapping from fields in order.
// Returns a PARSE_ERROR for empty input, invalid names or duplicates.
func New(typeName string, fields ...Field) (TypeMapping, error) {
	if len(fields) == 0 {
		return TypeMapping{}, ir.NewParseError(typeName, "type mapping has no fields")
	}

	m := TypeMapping{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if !validName.MatchString(f.Name) {
			return TypeMapping{}, ir.NewParseError(typeName, "invalid field name %q", f.Name)
		}
		if _, dup := m.index[f.Name]; dup {
			return TypeMapping{}, ir.NewParseError(typeName, "duplicate field %q", f.Name)
		}
		m.index[f.Name] = len(m.fields)
		m.fields = append(m.fields, f)
	}
	return m, nil
}

// MustNew is like New but panics on error.
// For statically known mappings only.
func MustNew(typeName string, fields ...Field) TypeMapping {
	m, err := New(typeName, fields...)
	if err != nil {
		panic(err)
	}
	return m
}

// Len returns the number of fields.
func (m TypeMapping) Len() int {
	return len(m.fields)
}

// Fields returns the fields in declaration order.
// The returned slice is a copy.
func (m TypeMapping) Fields() []Field {
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Names returns the field names in declaration order.
func (m TypeMapping) Names() []string {
	out := make([]string, len(m.fields))
	for i, f := range m.fields {
		out[i] = f.Name
	}
	return out
}

// Get returns the type of the named field.
func (m TypeMapping) Get(name string) (TypeRef, bool) {
	i, ok := m.index[name]
	if !ok {
		return TypeRef{}, false
	}
	return m.fields[i].Type, true
}

// Equal reports whether both mappings declare the same fields in the same order.
func (m TypeMapping) Equal(other TypeMapping) bool {
	if len(m.fields) != len(other.fields) {
		return false
	}
	for i := range m.fields {
		if m.fields[i] != other.fields[i] {
			return false
		}
	}
	return true
}

// String re-encodes the mapping in definition syntax.
func (m TypeMapping) String() string {
	parts := make([]string, len(m.fields))
	for i, f := range m.fields {
		parts[i] = f.Name + ":" + f.Type.Name
	}
	return strings.Join(parts, ",")
}

var validName = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)
