// Package types is the scalar type registry.
//
// It maps the closed set of domain scalar kinds to schema-level type names
// and to the graphql-go scalars that serialize them.
package types

import (
	"strings"

	"github.com/graphql-go/graphql"
)

// ScalarType is the schema-facing name of a scalar kind.
type ScalarType string

const (
	// Address is a contract address: hex-string identity, no arithmetic.
	Address ScalarType = "Address"
	// Felt is a Stark field element, canonical hex.
	Felt ScalarType = "Felt"
	// DateTime is RFC3339, second precision, UTC, trailing Z.
	DateTime ScalarType = "DateTime"
	// String is the GraphQL built-in String.
	String ScalarType = "String"
	// ID is the GraphQL built-in ID.
	ID ScalarType = "ID"
)

// scalars lists every kind in declaration order.
var scalars = []ScalarType{Address, Felt, DateTime, String, ID}

// tokens maps lowercased storage definition tokens to kinds.
// Includes the Cairo spellings emitted by world manifests.
var tokens = map[string]ScalarType{
	"address":         Address,
	"contractaddress": Address,
	"felt":            Felt,
	"felt252":         Felt,
	"classhash":       Felt,
	"datetime":        DateTime,
	"string":          String,
	"id":              ID,
}

// Lookup resolves a type token to its scalar kind.
// Matching is case-insensitive.
func Lookup(token string) (ScalarType, bool) {
	t, ok := tokens[strings.ToLower(strings.TrimSpace(token))]
	return t, ok
}

// All returns every scalar kind in declaration order.
func All() []ScalarType {
	out := make([]ScalarType, len(scalars))
	copy(out, scalars)
	return out
}

// IsScalarName reports whether name is the schema name of a scalar kind.
func IsScalarName(name string) bool {
	for _, s := range scalars {
		if string(s) == name {
			return true
		}
	}
	return false
}

// Custom returns the scalars the schema must register explicitly.
// String and ID are built in.
func Custom() []*graphql.Scalar {
	return []*graphql.Scalar{AddressScalar, FeltScalar, DateTimeScalar}
}

// Output returns the graphql-go type used to serialize s.
func (s ScalarType) Output() *graphql.Scalar {
	switch s {
	case Address:
		return AddressScalar
	case Felt:
		return FeltScalar
	case DateTime:
		return DateTimeScalar
	case ID:
		return graphql.ID
	default:
		return graphql.String
	}
}

// String implements fmt.Stringer.
func (s ScalarType) String() string {
	return string(s)
}
