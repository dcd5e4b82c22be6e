// Package schema assembles object definitions into one executable GraphQL
// schema.
//
// Assembly happens once per discovery: Discover reads the distinct
// component names and storage definitions from the store, Build turns the
// resulting objects into a graphql.Schema whose Storage union is closed over
// exactly the storage types known at that moment. Components registered
// later become visible only after the next Discover/Build.
package schema
