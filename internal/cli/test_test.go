package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTest_Pass(t *testing.T) {
	out, err := execute(t, "test", "testdata/scenarios/dead.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ dead (3 firings)")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTest_Directory(t *testing.T) {
	out, err := execute(t, "--format", "json", "test", "testdata/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result TestResult
	decodeData(t, out, &result)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Scenarios, 2)
	assert.Equal(t, "dead", result.Scenarios[0].Name)
	assert.Equal(t, "wrong", result.Scenarios[1].Name)
	assert.Equal(t, []string{"calls[0] demo.Dead.twice(I)I: expected 11, got 10"}, result.Scenarios[1].Errors)
}

func TestTest_Filter(t *testing.T) {
	out, err := execute(t, "test", "--filter", "de*", "testdata/scenarios")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")

	out, err = execute(t, "test", "--filter", "zzz*", "testdata/scenarios")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTest_Failure(t *testing.T) {
	out, err := execute(t, "test", "testdata/scenarios/wrong.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "  calls[0] demo.Dead.twice(I)I: expected 11, got 10")
}

func TestTest_MissingPath(t *testing.T) {
	_, err := execute(t, "test", "testdata/scenarios/absent.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_NotAScenario(t *testing.T) {
	out, err := execute(t, "test", "testdata/open.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "failed to load scenario")
}
