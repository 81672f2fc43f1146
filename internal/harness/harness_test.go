package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enable(v bool) *bool { return &v }

func count(n int) *int { return &n }

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Minimal test scenario",
		Flow: []Step{
			{Create: "solo"},
		},
		Assertions: []Assertion{
			{Type: AssertStatus, Flag: "solo", Enabled: enable(false)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass)
	assert.Empty(t, result.Errors)

	require.Len(t, result.Trace, 1)
	event := result.Trace[0]
	assert.Equal(t, 1, event.Step)
	assert.Equal(t, "create", event.Op)
	assert.Equal(t, "step-1", event.OperationID)
	assert.Equal(t, "ok", event.Outcome)
	require.Len(t, event.Records, 1)
	assert.Equal(t, TraceRecord{Seq: 1, Flag: "solo", Action: "created", Reason: "initial creation", Actor: "system"}, event.Records[0])
}

func TestRun_SetupIsNotTraced(t *testing.T) {
	scenario := &Scenario{
		Name:        "with_setup",
		Description: "Setup steps build state silently",
		Setup: []Step{
			{Create: "dep"},
			{Toggle: "dep", Enable: enable(true)},
		},
		Flow: []Step{
			{Create: "main", DependsOn: []string{"dep"}},
			{Toggle: "main", Enable: enable(true)},
		},
		Assertions: []Assertion{
			{Type: AssertStatus, Flag: "main", Enabled: enable(true)},
			{Type: AssertHistoryCount, Flag: "dep", Count: count(2)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, "step-3", result.Trace[0].OperationID)
	assert.Equal(t, int64(3), result.Trace[0].Records[0].Seq)
	assert.Equal(t, int64(4), result.Trace[1].Records[0].Seq)
}

func TestRun_SetupFailureAborts(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_setup",
		Description: "Setup references an unknown flag",
		Setup: []Step{
			{Toggle: "ghost", Enable: enable(true)},
		},
		Flow:       []Step{{Create: "a"}},
		Assertions: []Assertion{{Type: AssertChainValid, Flag: "a"}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setup[0] toggle ghost")
}

func TestRun_ExpectedErrorMatches(t *testing.T) {
	scenario := &Scenario{
		Name:        "expected_error",
		Description: "A rejected toggle is recorded as its error code",
		Flow: []Step{
			{Create: "dep"},
			{Create: "main", DependsOn: []string{"dep"}},
			{
				Toggle: "main",
				Enable: enable(true),
				Expect: &ExpectClause{Error: "UNSATISFIED_DEPENDENCIES", Missing: []string{"dep"}},
			},
		},
		Assertions: []Assertion{
			{Type: AssertStatus, Flag: "main", Enabled: enable(false)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	last := result.Trace[2]
	assert.Equal(t, "UNSATISFIED_DEPENDENCIES", last.Outcome)
	assert.Empty(t, last.Records)
}

func TestRun_ExpectationMismatches(t *testing.T) {
	tests := []struct {
		name    string
		flow    []Step
		wantErr string
	}{
		{
			name:    "unexpected error",
			flow:    []Step{{Toggle: "ghost", Enable: enable(true)}},
			wantErr: "unexpected error",
		},
		{
			name: "expected error got success",
			flow: []Step{
				{Create: "a", Expect: &ExpectClause{Error: "DUPLICATE_FLAG"}},
			},
			wantErr: "expected error DUPLICATE_FLAG, got success",
		},
		{
			name: "wrong code",
			flow: []Step{
				{Toggle: "ghost", Enable: enable(true), Expect: &ExpectClause{Error: "CYCLE_DETECTED"}},
			},
			wantErr: "expected error CYCLE_DETECTED, got FLAG_NOT_FOUND",
		},
		{
			name: "wrong missing list",
			flow: []Step{
				{Create: "a", DependsOn: []string{"x", "y"}, Expect: &ExpectClause{Error: "UNRESOLVED_DEPENDENCY", Missing: []string{"y"}}},
			},
			wantErr: "expected missing [y], got [x y]",
		},
		{
			name: "wrong cycle dependency",
			flow: []Step{
				{Create: "a", DependsOn: []string{"a"}, Expect: &ExpectClause{Error: "CYCLE_DETECTED", Dependency: "b"}},
			},
			wantErr: `expected dependency "b", got "a"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := &Scenario{
				Name:        "mismatch",
				Description: tt.name,
				Flow:        tt.flow,
				Assertions:  []Assertion{{Type: AssertFlagAbsent, Flag: "zzz"}},
			}

			result, err := Run(scenario)
			require.NoError(t, err)

			assert.False(t, result.Pass)
			require.Len(t, result.Errors, 1)
			assert.Contains(t, result.Errors[0], tt.wantErr)
		})
	}
}

func TestRun_InvalidNameDrawsNoOperationID(t *testing.T) {
	scenario := &Scenario{
		Name:        "invalid_name",
		Description: "Blank names are rejected before any id is issued",
		Flow: []Step{
			{Create: "a"},
			{Create: "b", DependsOn: []string{" "}, Expect: &ExpectClause{Error: "INVALID_NAME"}},
		},
		Assertions: []Assertion{{Type: AssertFlagAbsent, Flag: "b"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, "", result.Trace[1].OperationID)
	assert.Empty(t, result.Trace[1].Records)
}

func TestRun_CascadeTrace(t *testing.T) {
	scenario := &Scenario{
		Name:        "cascade",
		Description: "Disable cascades through a chain",
		Setup: []Step{
			{Create: "a"},
			{Create: "b", DependsOn: []string{"a"}},
			{Create: "c", DependsOn: []string{"b"}},
			{Toggle: "a", Enable: enable(true)},
			{Toggle: "b", Enable: enable(true)},
			{Toggle: "c", Enable: enable(true)},
		},
		Flow: []Step{
			{Toggle: "a", Enable: enable(false), Actor: "ops"},
		},
		Assertions: []Assertion{
			{Type: AssertHistoryActions, Flag: "c", Actions: []string{"auto-disabled", "enabled", "created"}},
			{Type: AssertChainValid, Flag: "c"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 1)
	records := result.Trace[0].Records
	require.Len(t, records, 3)
	assert.Equal(t, []TraceRecord{
		{Seq: 7, Flag: "a", Action: "disabled", Reason: "manual disable", Actor: "ops"},
		{Seq: 8, Flag: "b", Action: "auto-disabled", Reason: "dependency a disabled", Actor: "ops"},
		{Seq: 9, Flag: "c", Action: "auto-disabled", Reason: "dependency b disabled", Actor: "ops"},
	}, records)
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
