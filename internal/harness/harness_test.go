package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return scenario
}

func TestRun_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		firings int
		calls   int
	}{
		{"math", 5, 5},
		{"selected_rules", 2, 1},
		{"unoptimized", 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Run(loadScenario(t, tt.name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
			assert.Len(t, result.Firings(), tt.firings)
			assert.Len(t, result.Trace, tt.firings+2*tt.calls)
		})
	}
}

func TestRun_SequentialSeqs(t *testing.T) {
	result, err := Run(loadScenario(t, "math"))
	require.NoError(t, err)
	for i, e := range result.Trace {
		assert.Equal(t, int64(i+1), e.Seq)
	}
}

func TestRun_FiringsComeFirst(t *testing.T) {
	result, err := Run(loadScenario(t, "math"))
	require.NoError(t, err)

	firings := result.Firings()
	require.Len(t, firings, 5)
	assert.Equal(t, "unused-instructions", firings[0].Rule)
	assert.Equal(t, "demo.Math.twice(I)I", firings[0].Method)
	assert.Equal(t, "%unused = add int %x, 1", firings[0].Inst)
	assert.Equal(t, "useless-phis", firings[3].Rule)
	assert.Equal(t, "%exit", firings[3].Block)

	assert.Equal(t, EventCall, result.Trace[5].Type)
	assert.Equal(t, []string{"21"}, result.Trace[5].Args)
	assert.Equal(t, EventReturn, result.Trace[6].Type)
	assert.Equal(t, "42", result.Trace[6].Result)
	assert.Equal(t, EventThrow, result.Trace[8].Type)
	assert.Equal(t, "java.lang.ArithmeticException: / by zero", result.Trace[8].Result)
}

func TestRun_ReportsFailures(t *testing.T) {
	result, err := Run(loadScenario(t, "failing"))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Equal(t, "calls[0] demo.Math.twice(I)I: expected 3, got 2", result.Errors[0])
	assert.Equal(t, "calls[1] demo.Math.div(II)I: expected 0, threw java.lang.ArithmeticException: / by zero", result.Errors[1])
	assert.Equal(t, "calls[2] demo.Math.pass(I)I: expected java.lang.RuntimeException, returned 1", result.Errors[2])
	assert.Contains(t, result.Errors[3], "assertions[0]")
	assert.Contains(t, result.Errors[3], "fired 1 times")
	assert.Contains(t, result.Errors[4], "assertions[1]")
	assert.Contains(t, result.Errors[4], "never fired")
}

func TestRun_ThrowsSuperclass(t *testing.T) {
	scenario := loadScenario(t, "math")
	scenario.Calls = []CallStep{{
		Method: "demo.Math.div",
		Args:   []string{"3", "0"},
		Expect: &ExpectClause{Throws: "java.lang.RuntimeException"},
	}}
	scenario.Assertions = nil

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_UnexpectedException(t *testing.T) {
	scenario := loadScenario(t, "unoptimized")
	scenario.Calls = []CallStep{{Method: "demo.Math.div", Args: []string{"3", "0"}}}
	scenario.Assertions = nil

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{"calls[0] demo.Math.div(II)I: unexpected exception java.lang.ArithmeticException: / by zero"}, result.Errors)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		edit func(s *Scenario)
		want string
	}{
		{"unknown method", func(s *Scenario) { s.Calls = []CallStep{{Method: "demo.Math.triple"}} }, "calls[0]"},
		{"bad reference", func(s *Scenario) { s.Calls = []CallStep{{Method: "twice"}} }, "calls[0]"},
		{"argument count", func(s *Scenario) { s.Calls = []CallStep{{Method: "demo.Math.twice"}} }, "takes 1 arguments, got 0"},
		{"bad argument", func(s *Scenario) { s.Calls = []CallStep{{Method: "demo.Math.twice", Args: []string{"x"}}} }, "argument 0"},
		{"missing program", func(s *Scenario) { s.Programs = []string{"testdata/programs/absent.yaml"} }, "failed to load program"},
		{"unknown rule", func(s *Scenario) { s.Optimize = &OptimizeStep{Rules: []string{"fold"}} }, "failed to optimize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := loadScenario(t, "math")
			tt.edit(scenario)
			_, err := Run(scenario)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := RunContext(ctx, loadScenario(t, "unoptimized"))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.NotEmpty(t, result.Errors)
}

func TestRun_Deterministic(t *testing.T) {
	first, err := Run(loadScenario(t, "math"))
	require.NoError(t, err)
	second, err := Run(loadScenario(t, "math"))
	require.NoError(t, err)
	assert.Equal(t, first.Trace, second.Trace)
}
