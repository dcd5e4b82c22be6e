package object

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/worldgraph/internal/ir"
	"github.com/roach88/worldgraph/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "world.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func register(t *testing.T, s *store.Store, id, name, definition string) {
	t.Helper()
	require.NoError(t, s.RegisterComponent(context.Background(), store.Component{
		ID:                id,
		Name:              name,
		Address:           "0x00aa",
		ClassHash:         "0x00bb",
		TransactionHash:   "0x00cc",
		StorageDefinition: definition,
		CreatedAt:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
}

func setStorage(t *testing.T, s *store.Store, id string, pairs ...ir.Pair) {
	t.Helper()
	require.NoError(t, s.SetStorage(context.Background(), id, ir.NewValueMapping(pairs...)))
}

func conn(t *testing.T, s *store.Store) *sql.Conn {
	t.Helper()
	c, err := s.Acquire(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

var errPoolDown = errors.New("pool exhausted")

type failingPool struct{}

func (failingPool) Acquire(context.Context) (*sql.Conn, error) {
	return nil, errPoolDown
}
