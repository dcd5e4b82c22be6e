package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/worldgraph/internal/ir"
)

// Snapshot captures every query response of a scenario run.
type Snapshot struct {
	ScenarioName string        `json:"scenario_name"`
	Queries      []QueryResult `json:"queries"`
}

// toCanonicalMap converts a Snapshot for ir.MarshalCanonical, which only
// accepts maps, slices and scalars.
func (s *Snapshot) toCanonicalMap() map[string]any {
	queries := make([]any, len(s.Queries))
	for i, q := range s.Queries {
		queries[i] = map[string]any{
			"name":     q.Name,
			"response": q.Response,
		}
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"queries":       queries,
	}
}

// RunWithGolden executes a scenario and compares its responses against
// testdata/golden/{scenario.Name}.golden.
//
// Returns the result so callers can check Pass and Errors as well.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the responses of an existing result against a
// golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := Snapshot{ScenarioName: scenarioName, Queries: result.Queries}
	out, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, out)
	return nil
}
