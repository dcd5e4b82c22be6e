package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/worldgraph/internal/felt"
	"github.com/roach88/worldgraph/internal/graphql/types"
	"github.com/roach88/worldgraph/internal/ir"
	"github.com/roach88/worldgraph/internal/querysql"
	"github.com/roach88/worldgraph/internal/typemap"
)

// ErrConflict reports a registration that contradicts an existing component.
var ErrConflict = errors.New("component conflict")

// RegisterComponent inserts a component row and creates its storage table.
//
// The storage definition must parse; address and hashes are stored as
// canonical felts. Registering an identical component twice is a no-op.
// Reusing an id or name with different content, or a name whose type name
// collides with another component or a reserved schema name, returns
// ErrConflict.
func (s *Store) RegisterComponent(ctx context.Context, c Component) error {
	c, mapping, err := normalizeComponent(c)
	if err != nil {
		return fmt.Errorf("register component: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("register component: %w", err)
	}
	defer tx.Rollback()

	done, err := checkExisting(ctx, tx, c)
	if err != nil {
		return fmt.Errorf("register component %q: %w", c.Name, err)
	}
	if done {
		return tx.Commit()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO components
		(id, name, address, class_hash, transaction_hash, storage_definition, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID,
		c.Name,
		c.Address,
		c.ClassHash,
		c.TransactionHash,
		c.StorageDefinition,
		types.FormatDateTime(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("register component %q: %w", c.Name, err)
	}

	if _, err := tx.ExecContext(ctx, createStorageTableSQL(c.TypeName(), mapping)); err != nil {
		return fmt.Errorf("create storage table %q: %w", c.TypeName(), err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("register component %q: %w", c.Name, err)
	}

	s.log.Infow("Registered component", "id", c.ID, "name", c.Name, "fields", mapping.Len())
	return nil
}

func normalizeComponent(c Component) (Component, typemap.TypeMapping, error) {
	if strings.TrimSpace(c.ID) == "" {
		return c, typemap.TypeMapping{}, errors.New("component id is empty")
	}
	typeName := c.TypeName()
	if typeName == "" {
		return c, typemap.TypeMapping{}, fmt.Errorf("component name %q yields no type name", c.Name)
	}
	if types.IsReserved(typeName) {
		return c, typemap.TypeMapping{}, fmt.Errorf("%w: type name %q is reserved", ErrConflict, typeName)
	}

	var err error
	for _, f := range []struct {
		name string
		val  *string
	}{
		{"address", &c.Address},
		{"class_hash", &c.ClassHash},
		{"transaction_hash", &c.TransactionHash},
	} {
		if *f.val, err = felt.Canonical(*f.val); err != nil {
			return c, typemap.TypeMapping{}, fmt.Errorf("%s: %w", f.name, err)
		}
	}

	c.StorageDefinition = strings.TrimSpace(c.StorageDefinition)
	mapping, err := typemap.Parse(c.StorageDefinition, typeName, typemap.WithObjectTypes(types.ComponentTypeName))
	if err != nil {
		return c, typemap.TypeMapping{}, err
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC().Truncate(time.Second)

	return c, mapping, nil
}

// checkExisting reports whether an identical component is already
// registered, and fails on any conflicting row.
func checkExisting(ctx context.Context, tx *sql.Tx, c Component) (bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name, storage_definition FROM components`)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	identical := false
	for rows.Next() {
		var id, name, def string
		if err := rows.Scan(&id, &name, &def); err != nil {
			return false, err
		}
		switch {
		case id == c.ID && name == c.Name && def == c.StorageDefinition:
			identical = true
		case id == c.ID:
			return false, fmt.Errorf("%w: id %q already registered as %q", ErrConflict, id, name)
		case name == c.Name:
			return false, fmt.Errorf("%w: name %q already registered with id %q", ErrConflict, name, id)
		case StorageTable(name) == c.TypeName():
			return false, fmt.Errorf("%w: %q and %q share type name %q", ErrConflict, name, c.Name, c.TypeName())
		}
	}
	return identical, rows.Err()
}

func createStorageTableSQL(table string, mapping typemap.TypeMapping) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", querysql.QuoteIdentifier(table))
	b.WriteString("    component_id TEXT PRIMARY KEY REFERENCES components(id)")
	for _, f := range mapping.Fields() {
		fmt.Fprintf(&b, ",\n    %s %s", querysql.QuoteIdentifier(f.Name), columnType(f.Type))
	}
	b.WriteString("\n)")
	return b.String()
}

func columnType(ref typemap.TypeRef) string {
	if ref.Kind == typemap.KindObject {
		return "TEXT REFERENCES components(id)"
	}
	if s, _ := ref.ScalarType(); s == types.DateTime {
		return "DATETIME"
	}
	return "TEXT"
}

// SetStorage upserts the storage row of one component.
//
// values may name any subset of the declared fields; unnamed columns keep
// their current value (NULL on first insert). Felt and Address values are
// stored canonically and DateTime values as RFC3339 UTC.
func (s *Store) SetStorage(ctx context.Context, componentID string, values ir.ValueMapping) error {
	c, err := s.GetComponent(ctx, componentID)
	if err != nil {
		return fmt.Errorf("set storage: %w", err)
	}

	mapping, err := typemap.Parse(c.StorageDefinition, c.TypeName(), typemap.WithObjectTypes(types.ComponentTypeName))
	if err != nil {
		return fmt.Errorf("set storage: %w", err)
	}

	cols := []string{"component_id"}
	args := []any{c.ID}
	for _, key := range values.Keys() {
		ref, ok := mapping.Get(key)
		if !ok {
			e := ir.NewFieldMissingError(key)
			e.TypeName = c.TypeName()
			return fmt.Errorf("set storage: %w", e)
		}
		v, _ := values.Get(key)
		arg, err := encodeValue(key, ref, v)
		if err != nil {
			return fmt.Errorf("set storage: %w", err)
		}
		cols = append(cols, key)
		args = append(args, arg)
	}

	if _, err := s.db.ExecContext(ctx, upsertSQL(c.TypeName(), cols), args...); err != nil {
		return fmt.Errorf("set storage %q: %w", c.TypeName(), err)
	}

	s.log.Debugw("Set storage", "component", c.ID, "type", c.TypeName(), "fields", len(cols)-1)
	return nil
}

func upsertSQL(table string, cols []string) string {
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = querysql.QuoteIdentifier(col)
		marks[i] = "?"
	}

	conflict := "DO NOTHING"
	if len(cols) > 1 {
		sets := make([]string, 0, len(cols)-1)
		for _, q := range quoted[1:] {
			sets = append(sets, q+" = excluded."+q)
		}
		conflict = "DO UPDATE SET " + strings.Join(sets, ", ")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(component_id) %s",
		querysql.QuoteIdentifier(table),
		strings.Join(quoted, ", "),
		strings.Join(marks, ", "),
		conflict)
}

// encodeValue converts a value to the column representation of its field.
func encodeValue(field string, ref typemap.TypeRef, v ir.Value) (any, error) {
	if _, isNull := v.(ir.Null); isNull {
		return nil, nil
	}

	if ref.Kind == typemap.KindObject {
		s, ok := v.(ir.String)
		if !ok {
			return nil, ir.NewTypeMismatchError(field, "String id", ir.KindOf(v))
		}
		return string(s), nil
	}

	kind, _ := ref.ScalarType()
	switch kind {
	case types.Felt, types.Address:
		var raw string
		switch val := v.(type) {
		case ir.String:
			raw = string(val)
		case ir.Int:
			raw = strconv.FormatInt(int64(val), 10)
		default:
			return nil, ir.NewTypeMismatchError(field, string(kind), ir.KindOf(v))
		}
		canonical, err := felt.Canonical(raw)
		if err != nil {
			e := ir.NewTypeMismatchError(field, string(kind), ir.KindOf(v))
			e.Err = err
			return nil, e
		}
		return canonical, nil

	case types.DateTime:
		s, ok := v.(ir.String)
		if !ok {
			return nil, ir.NewTypeMismatchError(field, string(kind), ir.KindOf(v))
		}
		t, err := types.ParseDateTime(string(s))
		if err != nil {
			e := ir.NewTypeMismatchError(field, string(kind), ir.KindOf(v))
			e.Err = err
			return nil, e
		}
		return types.FormatDateTime(t), nil

	default:
		switch val := v.(type) {
		case ir.String:
			return string(val), nil
		case ir.Int:
			return strconv.FormatInt(int64(val), 10), nil
		default:
			return nil, ir.NewTypeMismatchError(field, string(kind), ir.KindOf(v))
		}
	}
}
