package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/bcir/internal/emit"
)

// Snapshot is the canonical form of a scenario trace.
type Snapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// Canonical marshals the snapshot as canonical JSON. Empty event fields
// are left out.
func (s *Snapshot) Canonical() ([]byte, error) {
	events := make([]emit.Document, len(s.Trace))
	for i, e := range s.Trace {
		doc := emit.Document{
			"type": e.Type,
			"seq":  e.Seq,
		}
		for key, v := range map[string]string{
			"rule":   e.Rule,
			"method": e.Method,
			"block":  e.Block,
			"inst":   e.Inst,
			"result": e.Result,
		} {
			if v != "" {
				doc[key] = v
			}
		}
		if e.Args != nil {
			doc["args"] = e.Args
		}
		events[i] = doc
	}
	return emit.MarshalCanonical(emit.Document{
		"scenario_name": s.ScenarioName,
		"trace":         events,
	})
}

// RunWithGolden executes a scenario and compares the trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if the scenario cannot run. A trace mismatch fails t.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := Snapshot{ScenarioName: scenarioName, Trace: result.Trace}
	data, err := snapshot.Canonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
