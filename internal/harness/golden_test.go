package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "testdata/scenarios"

func TestScenarios_Golden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join(scenariosDir, "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.Equal(t, name, scenario.Name, "scenario name must match file name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join(scenariosDir, "cascade_chain.yaml"))
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := Snapshot(scenario.Name, first)
	require.NoError(t, err)
	b, err := Snapshot(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestSnapshot_Shape(t *testing.T) {
	result := NewResult()
	result.Trace = append(result.Trace, TraceEvent{
		Step:        1,
		Op:          "create",
		Flag:        "a",
		OperationID: "op-1",
		Outcome:     "ok",
		Records: []TraceRecord{
			{Seq: 1, Flag: "a", Action: "created", Reason: "initial creation", Actor: "system"},
		},
	})

	data, err := Snapshot("shape", result)
	require.NoError(t, err)

	want := `{"scenario_name":"shape","trace":[{"flag":"a","op":"create","operation_id":"op-1","outcome":"ok",` +
		`"records":[{"action":"created","actor":"system","flag":"a","reason":"initial creation","seq":1}],"step":1}]}`
	assert.Equal(t, want, string(data))
}

func TestGoldenFiles_HaveScenarios(t *testing.T) {
	goldens, err := filepath.Glob(filepath.Join(GoldenDir, "*.golden"))
	require.NoError(t, err)

	for _, g := range goldens {
		base := strings.TrimSuffix(filepath.Base(g), ".golden")
		_, err := os.Stat(filepath.Join(scenariosDir, base+".yaml"))
		assert.NoError(t, err, "orphan golden file %s", g)
	}
}
