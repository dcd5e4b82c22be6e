package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/worldgraph/internal/graphql/types"
	"github.com/roach88/worldgraph/internal/graphql/utils"
	"github.com/roach88/worldgraph/internal/ir"
)

// Component is one registered component row.
type Component struct {
	ID                string
	Name              string
	Address           string
	ClassHash         string
	TransactionHash   string
	StorageDefinition string
	CreatedAt         time.Time
}

// TypeName returns the schema type name, which is also the storage table name.
func (c Component) TypeName() string {
	return StorageTable(c.Name)
}

// Definition is the part of a component the schema is derived from.
type Definition struct {
	Name              string
	TypeName          string
	StorageDefinition string
}

// StorageTable returns the storage table name for a component name.
func StorageTable(name string) string {
	_, typeName := utils.FormatName(name)
	return typeName
}

const componentColumns = `id, name, address, class_hash, transaction_hash, storage_definition, created_at`

// GetComponent returns the component with the given id.
// Returns a NOT_FOUND *ir.Error when no row matches.
func (s *Store) GetComponent(ctx context.Context, id string) (Component, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+componentColumns+` FROM components WHERE id = ?`, id)

	c, err := scanComponent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Component{}, ir.NewNotFoundError(types.ComponentTypeName, id)
	}
	if err != nil {
		return Component{}, fmt.Errorf("get component %q: %w", id, err)
	}
	return c, nil
}

// ListComponents returns every component ordered by id.
func (s *Store) ListComponents(ctx context.Context) ([]Component, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+componentColumns+` FROM components ORDER BY id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	defer rows.Close()

	var out []Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("list components: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	return out, nil
}

// Definitions returns the distinct component names with their storage
// definitions, ordered by name.
func (s *Store) Definitions(ctx context.Context) ([]Definition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, storage_definition FROM components ORDER BY name COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}
	defer rows.Close()

	var out []Definition
	for rows.Next() {
		var d Definition
		if err := rows.Scan(&d.Name, &d.StorageDefinition); err != nil {
			return nil, fmt.Errorf("load definitions: %w", err)
		}
		d.TypeName = StorageTable(d.Name)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComponent(row scanner) (Component, error) {
	var c Component
	var createdAt any
	err := row.Scan(&c.ID, &c.Name, &c.Address, &c.ClassHash, &c.TransactionHash,
		&c.StorageDefinition, &createdAt)
	if err != nil {
		return Component{}, err
	}

	c.CreatedAt, err = ScanTime(createdAt)
	if err != nil {
		return Component{}, fmt.Errorf("component %q created_at: %w", c.ID, err)
	}
	return c, nil
}

// ScanTime normalizes a DATETIME column value. go-sqlite3 returns time.Time
// when it recognises the layout and the raw text otherwise.
func ScanTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return types.ParseDateTime(t)
	case []byte:
		return types.ParseDateTime(string(t))
	default:
		return time.Time{}, fmt.Errorf("unsupported datetime value %T", v)
	}
}
