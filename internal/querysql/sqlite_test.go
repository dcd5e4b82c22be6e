package querysql_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/worldgraph/internal/ir"
	"github.com/roach88/worldgraph/internal/queryir"
	"github.com/roach88/worldgraph/internal/querysql"
	"github.com/roach88/worldgraph/internal/store"
)

// runCompiled executes the compiled statement against a real store and
// returns the first column of every row.
func runCompiled(t *testing.T, s *store.Store, q queryir.Select) []string {
	t.Helper()
	sqlText, params, err := querysql.NewCompiler().Compile(q)
	require.NoError(t, err)

	rows, err := s.DB().QueryContext(context.Background(), sqlText, params...)
	require.NoError(t, err, sqlText)
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		require.NoError(t, rows.Scan(&v))
		out = append(out, v)
	}
	require.NoError(t, rows.Err())
	return out
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCompile_ExecutesOnSQLite(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for _, c := range []struct{ id, name string }{{"0x2", "b"}, {"0x1", "a"}, {"0x3", "B"}} {
		_, err := s.DB().ExecContext(ctx,
			`INSERT INTO components (id, name, address, class_hash, transaction_hash, storage_definition)
			 VALUES (?, ?, '0x1', '0x1', '0x1', 'x:Felt')`, c.id, c.name)
		require.NoError(t, err)
	}

	t.Run("ordered", func(t *testing.T) {
		got := runCompiled(t, s, queryir.Select{
			From:    "components",
			Columns: []string{"name"},
			OrderBy: []string{"name"},
		})
		assert.Equal(t, []string{"B", "a", "b"}, got)
	})

	t.Run("insertion order", func(t *testing.T) {
		got := runCompiled(t, s, queryir.Select{
			From:    "components",
			Columns: []string{"id"},
		})
		assert.Equal(t, []string{"0x2", "0x1", "0x3"}, got)
	})

	t.Run("filtered with limit", func(t *testing.T) {
		got := runCompiled(t, s, queryir.Select{
			From:    "components",
			Columns: []string{"name"},
			Filter:  queryir.Eq("id", ir.String("0x1")),
			OrderBy: []string{"id", "name"},
			Limit:   1,
		})
		assert.Equal(t, []string{"a"}, got)
	})

	t.Run("empty table", func(t *testing.T) {
		_, err := s.DB().ExecContext(ctx, `DELETE FROM components`)
		require.NoError(t, err)
		got := runCompiled(t, s, queryir.Select{
			From:    "components",
			Columns: []string{"name"},
			OrderBy: []string{"name"},
		})
		assert.Empty(t, got)
	})
}
