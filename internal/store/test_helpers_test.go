package store

import (
	"path/filepath"
	"testing"
	"time"
)

// createTestStore creates a new file-backed store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestComponent creates a component with minimal valid fields.
func createTestComponent(id, name, definition string) Component {
	return Component{
		ID:                id,
		Name:              name,
		Address:           "0x0abc",
		ClassHash:         "0x0def",
		TransactionHash:   "0x0123",
		StorageDefinition: definition,
		CreatedAt:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}
