package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveQuotes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"abc"`, "abc"},
		{"abc", "abc"},
		{`'abc'`, "abc"},
		{`"abc`, `"abc`},
		{`""`, ""},
		{`"`, `"`},
		{`"a"b"`, `a"b`},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RemoveQuotes(tt.in), "input %q", tt.in)
	}
}

func TestRemoveQuotes_SameKey(t *testing.T) {
	assert.Equal(t, RemoveQuotes("abc"), RemoveQuotes(`"abc"`))
}

func TestFormatName(t *testing.T) {
	tests := []struct {
		in, field, typ string
	}{
		{"Position", "position", "Position"},
		{"Moves", "moves", "Moves"},
		{"player_moves", "playerMoves", "PlayerMoves"},
		{"PlayerMoves", "playerMoves", "PlayerMoves"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			field, typ := FormatName(tt.in)
			assert.Equal(t, tt.field, field)
			assert.Equal(t, tt.typ, typ)
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"id", "id"},
		{"classHash", "class_hash"},
		{"transactionHash", "transaction_hash"},
		{"storageDefinition", "storage_definition"},
		{"createdAt", "created_at"},
		{"componentID", "component_id"},
		{"already_snake", "already_snake"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ToSnakeCase(tt.in), "input %q", tt.in)
	}
}
