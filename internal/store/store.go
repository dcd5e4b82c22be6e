package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/worldgraph/internal/log"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on components.created_at
const currentSchemaVersion = 1

// DefaultMaxOpenConns is the pool size used when none is configured.
const DefaultMaxOpenConns = 4

// Store provides durable storage for world state.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db  *sql.DB
	log log.Logger
}

// Option configures Open.
type Option func(*options)

type options struct {
	maxOpenConns int
	logger       log.Logger
}

// WithMaxOpenConns bounds the connection pool.
func WithMaxOpenConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies the schema and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{maxOpenConns: DefaultMaxOpenConns, logger: log.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(o.maxOpenConns)
	db.SetMaxIdleConns(o.maxOpenConns)

	version, err := applySchema(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger := o.logger.Named("store")
	logger.Infow("Opened database", "path", path, "schemaVersion", version, "maxOpenConns", o.maxOpenConns)

	return &Store{db: db, log: logger}, nil
}

// dsn appends the connection pragmas understood by go-sqlite3.
func dsn(path string) string {
	params := url.Values{}
	params.Set("_busy_timeout", "5000")
	params.Set("_foreign_keys", "on")
	params.Set("_journal_mode", "WAL")
	params.Set("_synchronous", "NORMAL")
	return path + "?" + params.Encode()
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB.
// Use with caution - prefer Acquire for reads.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Acquire checks out one pooled connection.
// Callers must Close it once their fetch is done.
func (s *Store) Acquire(ctx context.Context) (*sql.Conn, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return conn, nil
}

// applySchema creates tables if they don't exist and runs migrations.
// Returns the resulting schema version.
func applySchema(db *sql.DB) (int, error) {
	if _, err := db.Exec(schemaSQL); err != nil {
		return 0, fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}

	return currentSchemaVersion, nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 indexes creation time for chronological listings.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_components_created_at
		ON components(created_at)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value on a
// fresh pooled connection. Used for testing.
func (s *Store) verifyPragma(ctx context.Context, name, expected string) error {
	conn, err := s.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	var value string
	if err := conn.QueryRowContext(ctx, fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
