package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ValueMapping is an ordered mapping from field name to Value.
//
// It is the generic carrier for a decoded row of unknown static shape.
// Iteration order is insertion order, so a mapping built by following a
// type mapping serializes its fields in declaration order.
//
// The zero value is an empty mapping ready to use.
type ValueMapping struct {
	keys   []string
	values map[string]Value
}

// Pair is a key-value pair for ordered ValueMapping construction.
type Pair struct {
	Key   string
	Value Value
}

// P is a shorthand for Pair.
// Example: NewValueMapping(P("x", String("0x1")), P("y", String("0x2")))
func P(key string, value Value) Pair {
	return Pair{Key: key, Value: value}
}

// NewValueMapping creates a ValueMapping from pairs, in order.
// A repeated key keeps its first position and takes the last value.
func NewValueMapping(pairs ...Pair) ValueMapping {
	m := ValueMapping{
		keys:   make([]string, 0, len(pairs)),
		values: make(map[string]Value, len(pairs)),
	}
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

// Set stores v under key, appending key if it is new.
// A nil v is stored as Null.
func (m *ValueMapping) Set(key string, v Value) {
	if v == nil {
		v = Null{}
	}
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value stored under key.
func (m ValueMapping) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the field names in insertion order.
// The returned slice is a copy.
func (m ValueMapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of fields.
func (m ValueMapping) Len() int {
	return len(m.keys)
}

// Equal reports whether both mappings hold the same fields, in the same
// order, with the same values.
func (m ValueMapping) Equal(other ValueMapping) bool {
	if len(m.keys) != len(other.keys) {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k {
			return false
		}
		if m.values[k] != other.values[k] {
			return false
		}
	}
	return true
}

// Native converts the mapping to a plain map for serialization layers that
// do not know about Value.
func (m ValueMapping) Native() map[string]any {
	out := make(map[string]any, len(m.keys))
	for _, k := range m.keys {
		out[k] = Native(m.values[k])
	}
	return out
}

// MarshalJSON implements json.Marshaler, keeping insertion order.
func (m ValueMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalValue(m.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
