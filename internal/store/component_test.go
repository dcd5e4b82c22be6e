package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/worldgraph/internal/ir"
)

func TestGetComponent_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetComponent(context.Background(), "0xdead")
	require.Error(t, err)
	assert.True(t, ir.IsNotFound(err))
}

func TestListComponents_OrderedByID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RegisterComponent(ctx, createTestComponent("0x2", "Moves", "remaining:Felt")))
	require.NoError(t, s.RegisterComponent(ctx, createTestComponent("0x1", "Position", "x:Felt,y:Felt")))

	got, err := s.ListComponents(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "0x1", got[0].ID)
	assert.Equal(t, "0x2", got[1].ID)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got[0].CreatedAt)
}

func TestDefinitions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RegisterComponent(ctx, createTestComponent("0x1", "player_moves", "remaining:Felt")))
	require.NoError(t, s.RegisterComponent(ctx, createTestComponent("0x2", "Position", "x:Felt,y:Felt")))

	defs, err := s.Definitions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Definition{
		{Name: "Position", TypeName: "Position", StorageDefinition: "x:Felt,y:Felt"},
		{Name: "player_moves", TypeName: "PlayerMoves", StorageDefinition: "remaining:Felt"},
	}, defs)
}

func TestDefinitions_Empty(t *testing.T) {
	s := createTestStore(t)

	defs, err := s.Definitions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestScanTime(t *testing.T) {
	want := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
	}{
		{"time", want.In(time.FixedZone("x", 3600))},
		{"string", "2024-01-01T12:30:00Z"},
		{"sqlite text", "2024-01-01 12:30:00"},
		{"bytes", []byte("2024-01-01T12:30:00Z")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScanTime(tt.in)
			require.NoError(t, err)
			assert.True(t, want.Equal(got))
		})
	}

	_, err := ScanTime(int64(5))
	assert.Error(t, err)
}
