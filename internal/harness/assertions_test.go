package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupPath(t *testing.T) {
	data := map[string]any{
		"components": []any{
			map[string]any{"id": "0x1"},
			map[string]any{"id": "0x2", "storage": nil},
		},
	}

	v, err := lookupPath(data, "components.1.id")
	require.NoError(t, err)
	assert.Equal(t, "0x2", v)

	v, err = lookupPath(data, "components.1.storage")
	require.NoError(t, err)
	assert.Nil(t, v)

	for _, bad := range []string{"missing", "components.2", "components.x", "components.0.id.deeper"} {
		_, err := lookupPath(data, bad)
		assert.Error(t, err, bad)
	}
}

func TestMatchSubset(t *testing.T) {
	actual := map[string]any{
		"component": map[string]any{"id": "0x1", "name": "Position"},
		"list":      []any{"a", "b"},
	}

	assert.True(t, matchSubset(actual, map[string]any{"component": map[string]any{"id": "0x1"}}))
	assert.True(t, matchSubset(actual, map[string]any{"list": []any{"a", "b"}}))
	assert.False(t, matchSubset(actual, map[string]any{"list": []any{"a"}}), "lists match in full")
	assert.False(t, matchSubset(actual, map[string]any{"component": map[string]any{"id": "0x2"}}))
	assert.False(t, matchSubset(actual, map[string]any{"other": nil}), "missing key is not null")
	assert.False(t, matchSubset("scalar", map[string]any{}))
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual(int64(3), 3))
	assert.True(t, valuesEqual(nil, nil))
	assert.True(t, valuesEqual("0x1", "0x1"))
	assert.False(t, valuesEqual("3", 3))
	assert.False(t, valuesEqual(nil, "x"))
}

func TestStateValuesEqual(t *testing.T) {
	assert.True(t, stateValuesEqual("0xa", []byte("0xa")))
	assert.True(t, stateValuesEqual("0xa", "0xa"))
	assert.True(t, stateValuesEqual(10, int64(10)))
	assert.True(t, stateValuesEqual(true, int64(1)))
	assert.True(t, stateValuesEqual(nil, nil))
	assert.False(t, stateValuesEqual("0xa", nil))
	assert.False(t, stateValuesEqual(10, "10"))
}

func TestBuildWhereClause(t *testing.T) {
	where, params, err := buildWhereClause(map[string]any{"b": 2, "a": "x"})
	require.NoError(t, err)
	assert.Equal(t, `WHERE "a" = ? AND "b" = ?`, where)
	assert.Equal(t, []any{"x", 2}, params)

	where, params, err = buildWhereClause(nil)
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Nil(t, params)

	_, _, err = buildWhereClause(map[string]any{"a; DROP TABLE x": 1})
	assert.Error(t, err)
}
