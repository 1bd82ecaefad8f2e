package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: passing
description: "prompt and accept"
start: "2024-05-01T08:00:00Z"
steps:
  - {user: u1, command: /presensi, expect: prompted}
  - {user: u1, location: {latitude: 1, longitude: 2}, expect: accepted}
assertions:
  - {type: record_count, date: "2024-05-01", count: 1}
`

const failingScenario = `name: failing
description: "expects the wrong outcome"
steps:
  - {user: u1, location: {latitude: 1, longitude: 2}, expect: accepted}
`

func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestTestCommand_HarnessScenarios(t *testing.T) {
	dir, err := filepath.Abs(filepath.Join("..", "harness", "testdata", "scenarios"))
	require.NoError(t, err)
	env := newTestEnv(t)

	r := env.run(t, "", "test", dir).requireOK(t)
	assert.Contains(t, r.stdout, "✓ daily_attendance")
	assert.Contains(t, r.stdout, "0 failed")
}

func TestTestCommand_UpdateThenCompare(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	writeScenario(t, dir, "passing.yaml", passingScenario)

	env.run(t, "", "test", dir, "--update").requireOK(t)
	_, err := os.Stat(filepath.Join(dir, "golden", "passing.golden"))
	require.NoError(t, err)

	r := env.run(t, "", "test", dir).requireOK(t)
	assert.Contains(t, r.stdout, "✓ passing")

	// A stale golden file fails the scenario.
	golden := filepath.Join(dir, "golden", "passing.golden")
	require.NoError(t, os.WriteFile(golden, []byte(`{"scenario_name":"passing","trace":[]}`), 0o644))

	r = env.run(t, "", "test", dir)
	require.Error(t, r.err)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))
	assert.Contains(t, r.stdout, "trace does not match golden file")
}

func TestTestCommand_FailureAndJSON(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	writeScenario(t, dir, "passing.yaml", passingScenario)
	writeScenario(t, dir, "failing.yaml", failingScenario)
	writeScenario(t, dir, "broken.yaml", "name: [")

	r := env.run(t, "", "test", dir, "--format", "json")
	require.Error(t, r.err)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))

	var result TestResult
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &result))
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 2, result.Failed)

	byName := map[string]ScenarioResult{}
	for _, s := range result.Scenarios {
		byName[s.Name] = s
	}
	assert.Contains(t, byName["broken.yaml"].Errors[0], "failed to load scenario")
	assert.Contains(t, byName["failing"].Errors[0], "expected accepted, got need_command_first")
}

func TestTestCommand_Filter(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	writeScenario(t, dir, "passing.yaml", passingScenario)
	writeScenario(t, dir, "failing.yaml", failingScenario)

	r := env.run(t, "", "test", dir, "--filter", "pass*").requireOK(t)
	assert.Contains(t, r.stdout, "✓ passing")
	assert.NotContains(t, r.stdout, "failing")
}

func TestTestCommand_MissingDir(t *testing.T) {
	env := newTestEnv(t)

	r := env.run(t, "", "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
}

func TestTestCommand_Empty(t *testing.T) {
	env := newTestEnv(t)

	r := env.run(t, "", "test", t.TempDir()).requireOK(t)
	assert.Contains(t, r.stdout, "No scenarios found.")
}
