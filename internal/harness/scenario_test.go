package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes content next to an empty program file and returns
// the scenario path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	program := "format: \"1.0.0\"\nklasses: []\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prog.yaml"), []byte(program), 0644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/math.yaml")
	require.NoError(t, err)

	assert.Equal(t, "math", scenario.Name)
	assert.Equal(t, []string{filepath.Join("testdata", "programs", "math.yaml")}, scenario.Programs)
	require.NotNil(t, scenario.Optimize)
	assert.Empty(t, scenario.Optimize.Rules)
	require.Len(t, scenario.Calls, 5)
	assert.Equal(t, []string{"1", "0"}, scenario.Calls[1].Args)
	assert.Equal(t, "java.lang.ArithmeticException", scenario.Calls[1].Expect.Throws)
	assert.Equal(t, "1", scenario.Calls[3].Expect.Result)
	require.Len(t, scenario.Assertions, 5)
	assert.Equal(t, AssertFiringOrder, scenario.Assertions[2].Type)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "misspelled key"
programs: [prog.yaml]
calls:
  - method: demo.A.f
assertion:
  - type: verifies
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"missing name", "description: d\nprograms: [prog.yaml]\ncalls: [{method: demo.A.f}]\n", "name is required"},
		{"missing description", "name: n\nprograms: [prog.yaml]\ncalls: [{method: demo.A.f}]\n", "description is required"},
		{"no programs", "name: n\ndescription: d\ncalls: [{method: demo.A.f}]\n", "programs list is required"},
		{"nothing to check", "name: n\ndescription: d\nprograms: [prog.yaml]\n", "calls or assertions are required"},
		{"missing program", "name: n\ndescription: d\nprograms: [absent.yaml]\ncalls: [{method: demo.A.f}]\n", "program file not found"},
		{"unknown rule", "name: n\ndescription: d\nprograms: [prog.yaml]\noptimize: {rules: [fold]}\ncalls: [{method: demo.A.f}]\n", "optimize:"},
		{"missing method", "name: n\ndescription: d\nprograms: [prog.yaml]\ncalls: [{args: [\"1\"]}]\n", "calls[0]: method is required"},
		{"both expectations", "name: n\ndescription: d\nprograms: [prog.yaml]\ncalls: [{method: demo.A.f, expect: {result: \"1\", throws: x.E}}]\n", "exactly one of result or throws"},
		{"empty expectation", "name: n\ndescription: d\nprograms: [prog.yaml]\ncalls: [{method: demo.A.f, expect: {}}]\n", "exactly one of result or throws"},
		{"missing type", "name: n\ndescription: d\nprograms: [prog.yaml]\nassertions: [{count: 1}]\n", "assertions[0]: type is required"},
		{"unknown type", "name: n\ndescription: d\nprograms: [prog.yaml]\nassertions: [{type: trace_contains}]\n", "unknown assertion type"},
		{"bad count rule", "name: n\ndescription: d\nprograms: [prog.yaml]\nassertions: [{type: firing_count, rule: fold}]\n", "assertions[0]:"},
		{"negative count", "name: n\ndescription: d\nprograms: [prog.yaml]\nassertions: [{type: firing_count, count: -1}]\n", "count must be non-negative"},
		{"empty order", "name: n\ndescription: d\nprograms: [prog.yaml]\nassertions: [{type: firing_order}]\n", "rules list is required"},
		{"preserves without optimize", "name: n\ndescription: d\nprograms: [prog.yaml]\ncalls: [{method: demo.A.f}]\nassertions: [{type: preserves}]\n", "preserves requires an optimize step"},
		{"preserves without calls", "name: n\ndescription: d\nprograms: [prog.yaml]\noptimize: {}\nassertions: [{type: preserves}]\n", "preserves requires calls"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	scenario, err := LoadScenarioWithBasePath("testdata/scenarios/math.yaml", "testdata/scenarios")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "programs", "math.yaml"), scenario.Programs[0])
}
