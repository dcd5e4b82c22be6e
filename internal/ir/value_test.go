package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = String("0x1")
	var _ Value = Int(42)
	var _ Value = Bool(true)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "null", KindOf(Null{}))
	assert.Equal(t, "string", KindOf(String("a")))
	assert.Equal(t, "int", KindOf(Int(1)))
	assert.Equal(t, "bool", KindOf(Bool(false)))
	assert.Equal(t, "<nil>", KindOf(nil))
}

func TestFromNative(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"string", "abc", String("abc")},
		{"bytes", []byte("0x1"), String("0x1")},
		{"int", 7, Int(7)},
		{"int64", int64(-3), Int(-3)},
		{"bool", true, Bool(true)},
		{"json number", json.Number("12"), Int(12)},
		{"value passthrough", String("x"), String("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromNative(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromNative_RejectsFloats(t *testing.T) {
	_, err := FromNative(1.5)
	require.Error(t, err)

	_, err = FromNative(json.Number("1.5"))
	require.Error(t, err)

	_, err = FromNative(struct{}{})
	require.Error(t, err)
}

func TestNative(t *testing.T) {
	assert.Nil(t, Native(Null{}))
	assert.Equal(t, "s", Native(String("s")))
	assert.Equal(t, int64(9), Native(Int(9)))
	assert.Equal(t, true, Native(Bool(true)))
}
