package schema

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/sebdah/goldie/v2"
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

// buildFrom discovers and builds the schema for the current store content.
func buildFrom(t *testing.T, s *store.Store) graphql.Schema {
	t.Helper()
	objects, err := Discover(context.Background(), s, nil, nil)
	require.NoError(t, err)
	sch, err := Build(objects...)
	require.NoError(t, err)
	return sch
}

func run(t *testing.T, sch graphql.Schema, query string) *graphql.Result {
	t.Helper()
	return Execute(context.Background(), sch, Request{Query: query})
}

// assertGolden compares the canonical JSON of a result with a golden file.
func assertGolden(t *testing.T, name string, res *graphql.Result) {
	t.Helper()
	out, err := ir.MarshalCanonical(ResultMap(res))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, out)
}
