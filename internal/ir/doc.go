// Package ir provides the value representation shared by every resolver in
// worldgraph.
//
// Rows of unknown static shape (component records and storage records of
// any discovered type) are decoded into a ValueMapping: an ordered mapping
// from field name to a sealed scalar Value. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Values are scalars only: Null, String, Int, Bool
//   - NO float types anywhere - field elements travel as canonical hex strings
//   - Field order is insertion order and is preserved through JSON encoding
//   - Typed extraction returns *Error, never panics
package ir
