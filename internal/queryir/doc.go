// Package queryir provides the query intermediate representation used by
// the storage resolver.
//
// Resolvers never build SQL strings directly. They describe the read they
// need as a Select and hand it to a backend compiler (see querysql), which
// owns identifier quoting and parameter binding:
//
//	[resolver] → [Query IR] → [SQL Backend]
//
// The fragment is intentionally small:
//   - Select(from, columns, filter, order, limit)
//   - Predicates: Equals, And
//
// Query and Predicate are sealed interfaces using the marker method pattern,
// so backends can switch exhaustively over them.
//
// Literal values are ir.Value variants (no floats), which keeps parameter
// binding deterministic.
package queryir
