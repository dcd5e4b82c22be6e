package ir

import (
	"encoding/json"
	"fmt"
)

// Value is a sealed interface representing a decoded scalar.
// Only Null, String, Int and Bool implement this.
// NO Float - field elements are wider than any machine integer and are
// carried as canonical hex strings instead.
type Value interface {
	irValue() // Sealed - only these types implement it
}

// Null represents an SQL NULL / JSON null.
// Using an explicit type ensures all Values satisfy the sealed interface.
type Null struct{}

func (Null) irValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String represents a string value.
type String string

func (String) irValue() {}

// Int represents an integer value. Always int64.
type Int int64

func (Int) irValue() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) irValue() {}

// KindOf returns a short name for the variant held by v.
// Used in TYPE_MISMATCH diagnostics.
func KindOf(v Value) string {
	switch v.(type) {
	case Null:
		return "null"
	case String:
		return "string"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Native converts a Value to the plain Go value the GraphQL layer serializes.
// Null becomes nil.
func Native(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// FromNative converts a plain Go scalar into a Value.
// Floats are rejected.
func FromNative(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case []byte:
		return String(val), nil
	case int:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case bool:
		return Bool(val), nil
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("number is not an int64: %s", val)
		}
		return Int(n), nil
	case float32, float64:
		return nil, fmt.Errorf("floats are not representable: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// MarshalValue marshals a Value to JSON bytes.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Null:
		return []byte("null"), nil
	case String:
		return json.Marshal(string(val))
	case Int:
		return json.Marshal(int64(val))
	case Bool:
		return json.Marshal(bool(val))
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}
