package types

import (
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/roach88/worldgraph/internal/felt"
)

// FeltScalar serializes field elements as canonical hex.
var FeltScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:         string(Felt),
	Description:  "A Starknet field element encoded as canonical 0x-prefixed hex.",
	Serialize:    serializeFelt,
	ParseValue:   serializeFelt,
	ParseLiteral: parseFeltLiteral,
})

// AddressScalar serializes contract addresses as canonical hex.
var AddressScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:         string(Address),
	Description:  "A Starknet contract address encoded as canonical 0x-prefixed hex.",
	Serialize:    serializeFelt,
	ParseValue:   serializeFelt,
	ParseLiteral: parseFeltLiteral,
})

// DateTimeScalar serializes timestamps as RFC3339 in UTC with second precision.
var DateTimeScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        string(DateTime),
	Description: "An RFC3339 timestamp in UTC with second precision, e.g. 2024-01-01T00:00:00Z.",
	Serialize:   serializeDateTime,
	ParseValue:  serializeDateTime,
	ParseLiteral: func(valueAST ast.Value) interface{} {
		if v, ok := valueAST.(*ast.StringValue); ok {
			return serializeDateTime(v.Value)
		}
		return nil
	},
})

func serializeFelt(value interface{}) interface{} {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case *string:
		if v == nil {
			return nil
		}
		raw = *v
	case felt.Felt:
		return v.String()
	case int64:
		if v < 0 {
			return nil
		}
		return felt.FromUint64(uint64(v)).String()
	case int:
		if v < 0 {
			return nil
		}
		return felt.FromUint64(uint64(v)).String()
	default:
		return nil
	}

	canonical, err := felt.Canonical(raw)
	if err != nil {
		return nil
	}
	return canonical
}

func parseFeltLiteral(valueAST ast.Value) interface{} {
	switch v := valueAST.(type) {
	case *ast.StringValue:
		return serializeFelt(v.Value)
	case *ast.IntValue:
		return serializeFelt(v.Value)
	default:
		return nil
	}
}

func serializeDateTime(value interface{}) interface{} {
	switch v := value.(type) {
	case time.Time:
		return FormatDateTime(v)
	case *time.Time:
		if v == nil {
			return nil
		}
		return FormatDateTime(*v)
	case string:
		t, err := ParseDateTime(v)
		if err != nil {
			return nil
		}
		return FormatDateTime(t)
	default:
		return nil
	}
}
