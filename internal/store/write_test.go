package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/worldgraph/internal/ir"
)

type columnInfo struct {
	name    string
	colType string
	pk      bool
}

func tableColumns(t *testing.T, s *Store, table string) []columnInfo {
	t.Helper()
	rows, err := s.DB().Query(`SELECT name, type, pk FROM pragma_table_info(?)`, table)
	require.NoError(t, err)
	defer rows.Close()

	var out []columnInfo
	for rows.Next() {
		var c columnInfo
		var pk int
		require.NoError(t, rows.Scan(&c.name, &c.colType, &pk))
		c.pk = pk > 0
		out = append(out, c)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestRegisterComponent_CreatesStorageTable(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	c := createTestComponent("0x1", "Position", "x:Felt,y:Felt,owner:Component,seen:DateTime")
	require.NoError(t, s.RegisterComponent(ctx, c))

	assert.Equal(t, []columnInfo{
		{"component_id", "TEXT", true},
		{"x", "TEXT", false},
		{"y", "TEXT", false},
		{"owner", "TEXT", false},
		{"seen", "DATETIME", false},
	}, tableColumns(t, s, "Position"))
}

func TestRegisterComponent_CanonicalFelts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RegisterComponent(ctx, createTestComponent("0x1", "Position", "x:Felt")))

	got, err := s.GetComponent(ctx, "0x1")
	require.NoError(t, err)
	assert.Equal(t, "0xabc", got.Address)
	assert.Equal(t, "0xdef", got.ClassHash)
	assert.Equal(t, "0x123", got.TransactionHash)
}

func TestRegisterComponent_TypeNameTable(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RegisterComponent(ctx, createTestComponent("0x1", "player_moves", "remaining:Felt")))
	assert.NotEmpty(t, tableColumns(t, s, "PlayerMoves"))
}

func TestRegisterComponent_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	c := createTestComponent("0x1", "Position", "x:Felt,y:Felt")
	require.NoError(t, s.RegisterComponent(ctx, c))
	require.NoError(t, s.RegisterComponent(ctx, c))

	all, err := s.ListComponents(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRegisterComponent_Conflicts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.RegisterComponent(ctx, createTestComponent("0x1", "player_moves", "x:Felt")))

	tests := []struct {
		name string
		c    Component
	}{
		{"same id other definition", createTestComponent("0x1", "player_moves", "x:String")},
		{"same id other name", createTestComponent("0x1", "Other", "x:Felt")},
		{"same name other id", createTestComponent("0x2", "player_moves", "x:Felt")},
		{"type name collision", createTestComponent("0x3", "PlayerMoves", "x:Felt")},
		{"reserved", createTestComponent("0x4", "storage", "x:Felt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.RegisterComponent(ctx, tt.c)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConflict)
		})
	}
}

func TestRegisterComponent_Invalid(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.RegisterComponent(ctx, createTestComponent("0x1", "Position", "x:Felt,"))
	assert.True(t, ir.IsParseError(err))

	c := createTestComponent("0x1", "Position", "x:Felt")
	c.Address = "not-hex"
	assert.Error(t, s.RegisterComponent(ctx, c))

	assert.Error(t, s.RegisterComponent(ctx, createTestComponent("", "Position", "x:Felt")))
	assert.Error(t, s.RegisterComponent(ctx, createTestComponent("0x1", "__", "x:Felt")))

	all, err := s.ListComponents(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "failed registrations leave no rows")
}

func readStorage(t *testing.T, s *Store, table, id string, cols ...string) []sql.NullString {
	t.Helper()
	out := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range out {
		dest[i] = &out[i]
	}
	query := "SELECT "
	for i, c := range cols {
		if i > 0 {
			query += ", "
		}
		query += `"` + c + `"`
	}
	query += ` FROM "` + table + `" WHERE component_id = ?`
	require.NoError(t, s.DB().QueryRow(query, id).Scan(dest...))
	return out
}

func TestSetStorage_Upsert(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.RegisterComponent(ctx, createTestComponent("0x1", "Position", "x:Felt,y:Felt,label:String")))

	require.NoError(t, s.SetStorage(ctx, "0x1", ir.NewValueMapping(
		ir.P("x", ir.String("0x000a")),
		ir.P("y", ir.Int(20)),
	)))

	got := readStorage(t, s, "Position", "0x1", "x", "y", "label")
	assert.Equal(t, "0xa", got[0].String)
	assert.Equal(t, "0x14", got[1].String)
	assert.False(t, got[2].Valid)

	// Partial update keeps other columns.
	require.NoError(t, s.SetStorage(ctx, "0x1", ir.NewValueMapping(ir.P("label", ir.String("home")))))
	got = readStorage(t, s, "Position", "0x1", "x", "label")
	assert.Equal(t, "0xa", got[0].String)
	assert.Equal(t, "home", got[1].String)

	// Explicit null clears.
	require.NoError(t, s.SetStorage(ctx, "0x1", ir.NewValueMapping(ir.P("x", ir.Null{}))))
	got = readStorage(t, s, "Position", "0x1", "x")
	assert.False(t, got[0].Valid)
}

func TestSetStorage_EmptyMappingCreatesRow(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.RegisterComponent(ctx, createTestComponent("0x1", "Position", "x:Felt")))

	require.NoError(t, s.SetStorage(ctx, "0x1", ir.ValueMapping{}))
	require.NoError(t, s.SetStorage(ctx, "0x1", ir.ValueMapping{}))

	got := readStorage(t, s, "Position", "0x1", "x")
	assert.False(t, got[0].Valid)
}

func TestSetStorage_DateTime(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.RegisterComponent(ctx, createTestComponent("0x1", "Spawn", "at:DateTime")))

	require.NoError(t, s.SetStorage(ctx, "0x1", ir.NewValueMapping(ir.P("at", ir.String("2024-03-04 05:06:07")))))

	var raw any
	require.NoError(t, s.DB().QueryRow(`SELECT "at" FROM "Spawn"`).Scan(&raw))
	at, err := ScanTime(raw)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04T05:06:07Z", at.Format("2006-01-02T15:04:05Z"))
}

func TestSetStorage_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.RegisterComponent(ctx, createTestComponent("0x1", "Position", "x:Felt,owner:Component,at:DateTime")))

	err := s.SetStorage(ctx, "0x9", ir.NewValueMapping(ir.P("x", ir.Int(1))))
	assert.True(t, ir.IsNotFound(err), "unknown component: %v", err)

	err = s.SetStorage(ctx, "0x1", ir.NewValueMapping(ir.P("z", ir.Int(1))))
	assert.True(t, ir.IsFieldMissing(err), "unknown field: %v", err)

	err = s.SetStorage(ctx, "0x1", ir.NewValueMapping(ir.P("x", ir.Bool(true))))
	assert.True(t, ir.IsTypeMismatch(err), "bool felt: %v", err)

	err = s.SetStorage(ctx, "0x1", ir.NewValueMapping(ir.P("x", ir.String("zz"))))
	assert.True(t, ir.IsTypeMismatch(err), "bad hex: %v", err)

	err = s.SetStorage(ctx, "0x1", ir.NewValueMapping(ir.P("owner", ir.Int(1))))
	assert.True(t, ir.IsTypeMismatch(err), "int object ref: %v", err)

	err = s.SetStorage(ctx, "0x1", ir.NewValueMapping(ir.P("at", ir.String("yesterday"))))
	assert.True(t, ir.IsTypeMismatch(err), "bad datetime: %v", err)
}

func TestSetStorage_ObjectRefForeignKey(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.RegisterComponent(ctx, createTestComponent("0x1", "Ownership", "owner:Component")))

	require.NoError(t, s.SetStorage(ctx, "0x1", ir.NewValueMapping(ir.P("owner", ir.String("0x1")))))

	err := s.SetStorage(ctx, "0x1", ir.NewValueMapping(ir.P("owner", ir.String("0xmissing"))))
	assert.Error(t, err, "foreign keys are enforced")
}
