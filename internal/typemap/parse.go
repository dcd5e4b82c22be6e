package typemap

import (
	"fmt"
	"strings"

	"github.com/roach88/worldgraph/internal/graphql/types"
	"github.com/roach88/worldgraph/internal/ir"
)

// Option configures Parse.
type Option func(*parseOptions)

type parseOptions struct {
	objectTypes map[string]bool
}

// WithObjectTypes allows the named object types as field types.
func WithObjectTypes(names ...string) Option {
	return func(o *parseOptions) {
		for _, n := range names {
			o.objectTypes[n] = true
		}
	}
}

// ParseFunc is the signature shared by Parse and Cache.Parse.
type ParseFunc func(definition, typeName string, opts ...Option) (TypeMapping, error)

// Parse derives the TypeMapping described by a storage definition.
//
// typeName is the owning type and only appears in diagnostics. Malformed
// input fails with a PARSE_ERROR and no partial mapping: empty definition,
// empty pair, missing ':', invalid name, duplicate field or unknown type.
func Parse(definition, typeName string, opts ...Option) (TypeMapping, error) {
	o := parseOptions{objectTypes: make(map[string]bool)}
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(definition) == "" {
		return TypeMapping{}, ir.NewParseError(typeName, "empty storage definition")
	}

	pairs := strings.Split(definition, ",")
	fields := make([]Field, 0, len(pairs))

	for i, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			return TypeMapping{}, ir.NewParseError(typeName, "empty field declaration at position %d", i)
		}

		name, token, ok := strings.Cut(pair, ":")
		if !ok {
			return TypeMapping{}, ir.NewParseError(typeName, "field declaration %q is missing ':'", pair)
		}
		name = strings.TrimSpace(name)
		token = strings.TrimSpace(token)

		ref, err := resolveToken(token, o)
		if err != nil {
			return TypeMapping{}, ir.NewParseError(typeName, "field %q: %s", name, err.Error())
		}

		fields = append(fields, Field{Name: name, Type: ref})
	}

	return New(typeName, fields...)
}

func resolveToken(token string, o parseOptions) (TypeRef, error) {
	if s, ok := types.Lookup(token); ok {
		return Scalar(s), nil
	}
	if o.objectTypes[token] {
		return Object(token), nil
	}
	return TypeRef{}, fmt.Errorf("unknown type %q", token)
}
