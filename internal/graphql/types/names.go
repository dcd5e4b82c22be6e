package types

import "strings"

// Fixed schema type names.
const (
	QueryTypeName     = "Query"
	ComponentTypeName = "Component"
	StorageUnionName  = "Storage"
)

// builtins are the GraphQL scalars every schema carries.
var builtins = []string{"Int", "Float", "Boolean", "String", "ID"}

// IsReserved reports whether a derived type name would collide with a fixed
// schema name, a registered scalar, a GraphQL built-in or an introspection
// type.
func IsReserved(typeName string) bool {
	switch typeName {
	case QueryTypeName, ComponentTypeName, StorageUnionName:
		return true
	}
	if IsScalarName(typeName) || strings.HasPrefix(typeName, "__") {
		return true
	}
	for _, b := range builtins {
		if typeName == b {
			return true
		}
	}
	return false
}
