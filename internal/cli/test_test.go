package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessScenarios = "../harness/testdata/scenarios"

const chainScenario = `
name: chain
description: "Disable cascades to the dependent"
setup:
  - create: dep
  - create: main
    depends_on: [dep]
  - toggle: dep
    enable: true
  - toggle: main
    enable: true
flow:
  - toggle: dep
    enable: false
assertions:
  - type: status
    flag: main
    enabled: false
`

func writeScenarioFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out := mustExecute(t, "test", t.TempDir())
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out := mustExecute(t, "--format", "json", "test", t.TempDir())

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestCommandHarnessScenarios(t *testing.T) {
	out := mustExecute(t, "test", harnessScenarios)
	assert.Contains(t, out, "✓ cascade_chain")
	assert.Contains(t, out, "✓ dependency_walkthrough")
	assert.Contains(t, out, "0 failed")
}

func TestTestCommandFilter(t *testing.T) {
	out := mustExecute(t, "--format", "json", "test", harnessScenarios, "--filter", "cascade_*")

	var response struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, 2, response.Data.Total)
	for _, s := range response.Data.Scenarios {
		assert.True(t, s.Pass, s.Name)
		assert.Equal(t, goldenMatch, s.Golden)
	}
}

func TestTestCommandUpdateThenMatch(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "chain.yaml", chainScenario)

	out := mustExecute(t, "test", dir)
	assert.Contains(t, out, "✓ chain", "missing golden file falls back to assertions")

	out = mustExecute(t, "test", dir, "--update")
	assert.Contains(t, out, "✓ chain (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "chain.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"reason":"dependency dep disabled"`)

	out = mustExecute(t, "--format", "json", "test", dir)
	var response struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	require.Len(t, response.Data.Scenarios, 1)
	assert.Equal(t, goldenMatch, response.Data.Scenarios[0].Golden)
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "chain.yaml", chainScenario)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))
	writeScenarioFile(t, filepath.Join(dir, "golden"), "chain.golden", `{"scenario_name":"chain","trace":[]}`)

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ chain")
	assert.Contains(t, out, "does not match golden file")
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "wrong.yaml", `
name: wrong
description: "Asserts the wrong state"
flow:
  - create: a
assertions:
  - type: status
    flag: a
    enabled: true
`)
	writeScenarioFile(t, dir, "broken.yaml", "name: [")

	out, err := execute(t, "--format", "json", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var response struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "error", response.Status)
	assert.Equal(t, 2, response.Data.Failed)
	assert.Equal(t, 0, response.Data.Passed)
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt"} {
		writeScenarioFile(t, dir, name, "")
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yaml")}, files)

	files, err = findScenarioFiles(dir, "b*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.yaml")}, files)

	_, err = findScenarioFiles(dir, "[")
	require.Error(t, err)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "chain.golden"), goldenFilePath(filepath.Join("scenarios", "chain.yaml")))
}
