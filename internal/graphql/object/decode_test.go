package object

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/worldgraph/internal/graphql/types"
	"github.com/roach88/worldgraph/internal/ir"
	"github.com/roach88/worldgraph/internal/typemap"
)

func TestDecodeValue(t *testing.T) {
	felt := typemap.Scalar(types.Felt)
	addr := typemap.Scalar(types.Address)
	dt := typemap.Scalar(types.DateTime)
	str := typemap.Scalar(types.String)
	id := typemap.Scalar(types.ID)
	ref := typemap.Object(types.ComponentTypeName)

	tests := []struct {
		name string
		ref  typemap.TypeRef
		raw  any
		want ir.Value
	}{
		{"null felt", felt, nil, ir.Null{}},
		{"null string", str, nil, ir.Null{}},
		{"hex felt", felt, "0x000F", ir.String("0xf")},
		{"decimal felt", felt, "255", ir.String("0xff")},
		{"integer felt", felt, int64(16), ir.String("0x10")},
		{"zero felt", felt, int64(0), ir.String("0x0")},
		{"blob address", addr, []byte("0x0ABC"), ir.String("0xabc")},
		{"datetime time", dt, time.Date(2024, 1, 1, 1, 0, 0, 500, time.FixedZone("x", 3600)), ir.String("2024-01-01T00:00:00Z")},
		{"datetime offset text", dt, "2024-01-01T00:00:00+00:00", ir.String("2024-01-01T00:00:00Z")},
		{"datetime sqlite text", dt, "2024-01-01 00:00:00", ir.String("2024-01-01T00:00:00Z")},
		{"string text", str, "hello", ir.String("hello")},
		{"string integer", str, int64(42), ir.String("42")},
		{"id blob", id, []byte("abc"), ir.String("abc")},
		{"object ref", ref, "0x1", ir.String("0x1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeValue("f", tt.ref, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeValue_Mismatch(t *testing.T) {
	tests := []struct {
		name string
		ref  typemap.TypeRef
		raw  any
	}{
		{"real felt", typemap.Scalar(types.Felt), 1.5},
		{"negative felt", typemap.Scalar(types.Felt), int64(-1)},
		{"bad hex", typemap.Scalar(types.Address), "0xzz"},
		{"felt overflow", typemap.Scalar(types.Felt), "0x800000000000011000000000000000000000000000000000000000000000001"},
		{"bad datetime", typemap.Scalar(types.DateTime), "soon"},
		{"integer datetime", typemap.Scalar(types.DateTime), int64(1700000000)},
		{"bool string", typemap.Scalar(types.String), true},
		{"real ref", typemap.Object(types.ComponentTypeName), 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeValue("f", tt.ref, tt.raw)
			require.Error(t, err)
			assert.True(t, ir.IsTypeMismatch(err))
		})
	}
}
