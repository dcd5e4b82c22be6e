package object

import (
	"strconv"
	"time"

	"github.com/roach88/worldgraph/internal/felt"
	"github.com/roach88/worldgraph/internal/graphql/types"
	"github.com/roach88/worldgraph/internal/ir"
	"github.com/roach88/worldgraph/internal/typemap"
)

// decodeValue converts one raw column value to its Value variant.
//
//   - SQL NULL decodes to ir.Null for every kind
//   - Felt and Address accept hex or decimal text and non-negative integers,
//     and yield canonical hex
//   - DateTime accepts time.Time or text and yields RFC3339 UTC with Z
//   - String and ID accept text and integers
//   - object references yield the referenced id
func decodeValue(field string, ref typemap.TypeRef, raw any) (ir.Value, error) {
	if raw == nil {
		return ir.Null{}, nil
	}

	if ref.Kind == typemap.KindObject {
		s, ok := textOf(raw)
		if !ok {
			return nil, mismatch(field, ref.Name+" id", raw, nil)
		}
		return ir.String(s), nil
	}

	kind, _ := ref.ScalarType()
	switch kind {
	case types.Felt, types.Address:
		return decodeFelt(field, kind, raw)
	case types.DateTime:
		return decodeDateTime(field, raw)
	default:
		s, ok := textOf(raw)
		if !ok {
			return nil, mismatch(field, string(kind), raw, nil)
		}
		return ir.String(s), nil
	}
}

func decodeFelt(field string, kind types.ScalarType, raw any) (ir.Value, error) {
	switch v := raw.(type) {
	case int64:
		if v < 0 {
			return nil, mismatch(field, string(kind), raw, felt.ErrOutOfRange)
		}
		return ir.String(felt.FromUint64(uint64(v)).String()), nil
	case string, []byte:
		s, _ := textOf(v)
		canonical, err := felt.Canonical(s)
		if err != nil {
			return nil, mismatch(field, string(kind), raw, err)
		}
		return ir.String(canonical), nil
	default:
		return nil, mismatch(field, string(kind), raw, nil)
	}
}

func decodeDateTime(field string, raw any) (ir.Value, error) {
	switch v := raw.(type) {
	case time.Time:
		return ir.String(types.FormatDateTime(v)), nil
	case string, []byte:
		s, _ := textOf(v)
		t, err := types.ParseDateTime(s)
		if err != nil {
			return nil, mismatch(field, string(types.DateTime), raw, err)
		}
		return ir.String(types.FormatDateTime(t)), nil
	default:
		return nil, mismatch(field, string(types.DateTime), raw, nil)
	}
}

// textOf renders TEXT, BLOB and INTEGER column values as a string.
func textOf(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}

func mismatch(field, want string, raw any, cause error) *ir.Error {
	e := ir.NewTypeMismatchError(field, want, columnKind(raw))
	e.Err = cause
	return e
}

func columnKind(raw any) string {
	switch raw.(type) {
	case string:
		return "text"
	case []byte:
		return "blob"
	case int64:
		return "integer"
	case float64:
		return "real"
	case bool:
		return "boolean"
	case time.Time:
		return "datetime"
	default:
		return "unknown"
	}
}
