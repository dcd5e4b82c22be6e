package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario describes world state and the queries to run against it.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Components are registered in order.
	Components []ComponentStep `yaml:"components"`

	// Storage rows are written after every component is registered.
	Storage []StorageStep `yaml:"storage,omitempty"`

	Queries []QueryStep `yaml:"queries"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ComponentStep registers one component.
type ComponentStep struct {
	ID                string     `yaml:"id"`
	Name              string     `yaml:"name"`
	Address           string     `yaml:"address"`
	ClassHash         string     `yaml:"class_hash"`
	TransactionHash   string     `yaml:"transaction_hash"`
	StorageDefinition string     `yaml:"storage_definition"`
	CreatedAt         *time.Time `yaml:"created_at,omitempty"`
}

// StorageStep upserts the storage row of a component.
type StorageStep struct {
	Component string         `yaml:"component"`
	Values    map[string]any `yaml:"values"`
}

// QueryStep runs one GraphQL request.
type QueryStep struct {
	Name      string         `yaml:"name"`
	Query     string         `yaml:"query"`
	Variables map[string]any `yaml:"variables,omitempty"`

	// Expect is checked against the response. If nil, only a successful
	// execution without errors is required.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected response.
type ExpectClause struct {
	// Data is a subset match against the response data.
	Data map[string]any `yaml:"data,omitempty"`

	// Errors lists the expected error codes in order. An empty list
	// together with a nil Data means "any successful response".
	Errors []string `yaml:"errors,omitempty"`
}

// Assertion validates responses or final database state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "response_path": value at a dotted path of a query's data
	// - "error_count": number of errors of a query
	// - "storage_types": storage types of the built schema, in order
	// - "final_state": query a table and verify expected values
	Type string `yaml:"type"`

	// Query names the query step (response_path, error_count).
	Query string `yaml:"query,omitempty"`

	// Path is a dotted path into the data; numeric segments index lists.
	Path string `yaml:"path,omitempty"`

	// Equals is the expected value at Path.
	Equals any `yaml:"equals,omitempty"`

	Count int `yaml:"count,omitempty"`

	Types []string `yaml:"types,omitempty"`

	// Table is the table name (final_state).
	Table string `yaml:"table,omitempty"`

	// Where specifies query filters (final_state). All fields must match.
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected column values (final_state). Subset match.
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertResponsePath = "response_path"
	AssertErrorCount   = "error_count"
	AssertStorageTypes = "storage_types"
	AssertFinalState   = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "query:" vs "queries:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}

	for i, c := range s.Components {
		if c.ID == "" || c.Name == "" {
			return fmt.Errorf("components[%d]: id and name are required", i)
		}
		if c.StorageDefinition == "" {
			return fmt.Errorf("components[%d]: storage_definition is required", i)
		}
	}

	for i, st := range s.Storage {
		if st.Component == "" {
			return fmt.Errorf("storage[%d]: component is required", i)
		}
		if len(st.Values) == 0 {
			return fmt.Errorf("storage[%d]: values must be non-empty", i)
		}
	}

	names := make(map[string]bool, len(s.Queries))
	for i, q := range s.Queries {
		if q.Name == "" || q.Query == "" {
			return fmt.Errorf("queries[%d]: name and query are required", i)
		}
		if names[q.Name] {
			return fmt.Errorf("queries[%d]: duplicate name %q", i, q.Name)
		}
		names[q.Name] = true
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], names); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, queries map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertResponsePath:
		if !queries[a.Query] {
			return fmt.Errorf("assertions[%d]: unknown query %q", index, a.Query)
		}
		if a.Path == "" {
			return fmt.Errorf("assertions[%d]: path is required for response_path", index)
		}
	case AssertErrorCount:
		if !queries[a.Query] {
			return fmt.Errorf("assertions[%d]: unknown query %q", index, a.Query)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for error_count", index)
		}
	case AssertStorageTypes:
		// An empty list asserts that no storage types exist.
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
