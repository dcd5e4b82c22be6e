// Package store provides the SQLite-backed world state read by the GraphQL
// layer and written by the indexer.
//
// The store holds:
//   - components: one row per registered component, carrying its storage
//     definition (the schema string the GraphQL types are derived from)
//   - one storage table per component, named after the component's type
//     name and keyed by component_id
//
// # Database Configuration
//
// Pragmas are passed through the DSN so every pooled connection gets them,
// not just the first:
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Readers check out a dedicated connection with Acquire for the duration of
// one fetch and release it afterwards.
package store
