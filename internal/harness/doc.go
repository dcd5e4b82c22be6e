// Package harness runs world scenarios end to end: it registers components,
// writes their storage, builds the schema and executes GraphQL queries
// against a fresh SQLite database.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	components:
//	  - id: "0x1"
//	    name: Position
//	    address: "0xaa"
//	    class_hash: "0xbb"
//	    transaction_hash: "0xcc"
//	    storage_definition: "x: Felt, y: Felt"
//	storage:
//	  - component: "0x1"
//	    values: { x: "0x0a", y: 20 }
//	queries:
//	  - name: lookup
//	    query: '{ component(id: "0x1") { storage { ... on Position { x } } } }'
//	    expect:
//	      data: { component: { storage: { x: "0xa" } } }
//	assertions:
//	  - type: response_path
//	    query: lookup
//	    path: component.storage.x
//	    equals: "0xa"
//	  - type: final_state
//	    table: Position
//	    where: { component_id: "0x1" }
//	    expect: { x: "0xa" }
//
// Components without created_at are stamped one second apart starting at
// 2024-01-01T00:00:00Z, so snapshots are reproducible.
//
// # Golden Files
//
// RunWithGolden compares the canonical JSON of every query response with
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
