// Package typemap derives typed field mappings from storage definitions.
//
// A storage definition is the serialized layout a world persists for each
// component:
//
//	definition := pair ("," pair)*
//	pair       := name ":" type
//
// Whitespace around names, types and separators is ignored. Names must be
// valid GraphQL names. Types are scalar tokens from the scalar registry
// (Felt, Address, DateTime, String, ID and their Cairo spellings) or, when
// enabled with WithObjectTypes, the name of a known object type.
//
// Parse is pure and reentrant: it runs per query, and the same definition
// always yields an equal mapping. Cache memoizes results keyed by the
// definition's content hash for deployments that want to skip the re-parse.
package typemap
