package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Math(t *testing.T) {
	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden_Math -update
	err := RunWithGolden(t, loadScenario(t, "math"))
	require.NoError(t, err)
}

func TestAssertGolden_FromResult(t *testing.T) {
	result, err := Run(loadScenario(t, "math"))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	err = AssertGolden(t, "math", result)
	require.NoError(t, err)
}

func TestSnapshot_Canonical(t *testing.T) {
	snapshot := Snapshot{
		ScenarioName: "determinism_test",
		Trace: []TraceEvent{
			{Type: EventFiring, Seq: 1, Rule: "dead-casts", Method: "demo.A.f()V", Block: "%entry", Inst: "%c = cast %o to java.lang.Object"},
			{Type: EventCall, Seq: 2, Method: "demo.A.f()V"},
			{Type: EventReturn, Seq: 3, Method: "demo.A.f()V", Result: "void"},
		},
	}

	want := `{"scenario_name":"determinism_test","trace":[` +
		`{"block":"%entry","inst":"%c = cast %o to java.lang.Object","method":"demo.A.f()V","rule":"dead-casts","seq":1,"type":"firing"},` +
		`{"method":"demo.A.f()V","seq":2,"type":"call"},` +
		`{"method":"demo.A.f()V","result":"void","seq":3,"type":"return"}]}`

	for range 3 {
		data, err := snapshot.Canonical()
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
}

func TestSnapshot_CanonicalEmptyTrace(t *testing.T) {
	data, err := (&Snapshot{ScenarioName: "empty"}).Canonical()
	require.NoError(t, err)
	assert.Equal(t, `{"scenario_name":"empty","trace":[]}`, string(data))
}
