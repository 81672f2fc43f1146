package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/flaggraph/internal/model"
)

// GoldenDir is where scenario golden files live, relative to the package.
const GoldenDir = "testdata/scenarios/golden"

// Snapshot renders a result's trace as canonical JSON for golden comparison.
//
// Timestamps and hashes are left out; seq, operation ids and the audit
// record fields fully determine the trace.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	trace := make([]any, len(result.Trace))
	for i, event := range result.Trace {
		records := make([]any, len(event.Records))
		for j, rec := range event.Records {
			records[j] = map[string]any{
				"seq":    rec.Seq,
				"flag":   rec.Flag,
				"action": rec.Action,
				"reason": rec.Reason,
				"actor":  rec.Actor,
			}
		}
		trace[i] = map[string]any{
			"step":         event.Step,
			"op":           event.Op,
			"flag":         event.Flag,
			"operation_id": event.OperationID,
			"outcome":      event.Outcome,
			"records":      records,
		}
	}

	return model.MarshalCanonical(map[string]any{
		"scenario_name": scenarioName,
		"trace":         trace,
	})
}

// RunWithGolden executes a scenario and compares the trace against
// testdata/scenarios/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Assertion failures and golden
// mismatches fail t.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	for _, msg := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, msg)
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares a result's trace against the named golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, traceJSON)
	return nil
}
