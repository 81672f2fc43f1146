package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flaggraph/internal/engine"
	"github.com/roach88/flaggraph/internal/model"
)

// fakeQuerier serves canned answers for one flag graph.
type fakeQuerier struct {
	status  map[string]model.Status
	history map[string][]model.AuditRecord
	deps    map[string][]model.Flag
	broken  map[string]bool
}

func (f *fakeQuerier) Status(_ context.Context, name string) (model.Status, error) {
	s, ok := f.status[name]
	if !ok {
		return model.Status{}, engine.NewNotFoundError(name)
	}
	return s, nil
}

func (f *fakeQuerier) History(_ context.Context, name string) ([]model.AuditRecord, error) {
	if _, ok := f.status[name]; !ok {
		return nil, engine.NewNotFoundError(name)
	}
	return f.history[name], nil
}

func (f *fakeQuerier) Dependencies(_ context.Context, name string) ([]model.Flag, error) {
	if _, ok := f.status[name]; !ok {
		return nil, engine.NewNotFoundError(name)
	}
	return f.deps[name], nil
}

func (f *fakeQuerier) VerifyHistory(_ context.Context, name string) (int, error) {
	if f.broken[name] {
		return 0, &model.ChainError{Seq: 2, Message: "hash mismatch"}
	}
	return len(f.history[name]), nil
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{
		status: map[string]model.Status{
			"auth":     {Name: "auth", Enabled: true},
			"payments": {Name: "payments", Enabled: false},
		},
		history: map[string][]model.AuditRecord{
			"auth": {
				{Seq: 2, FlagName: "auth", Action: model.ActionEnabled},
				{Seq: 1, FlagName: "auth", Action: model.ActionCreated},
			},
		},
		deps: map[string][]model.Flag{
			"payments": {{Name: "auth"}},
		},
		broken: map[string]bool{"payments": true},
	}
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	q := newFakeQuerier()

	errs := EvaluateAssertions(context.Background(), q, []Assertion{
		{Type: AssertStatus, Flag: "auth", Enabled: enable(true)},
		{Type: AssertHistoryActions, Flag: "auth", Actions: []string{"enabled", "created"}},
		{Type: AssertHistoryCount, Flag: "auth", Count: count(2)},
		{Type: AssertEdges, Flag: "payments", DependsOn: []string{"auth"}},
		{Type: AssertEdges, Flag: "auth"},
		{Type: AssertFlagAbsent, Flag: "ghost"},
		{Type: AssertChainValid, Flag: "auth"},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{
			name:      "status mismatch",
			assertion: Assertion{Type: AssertStatus, Flag: "payments", Enabled: enable(true)},
			wantErr:   "expected enabled=true, got false",
		},
		{
			name:      "status of unknown flag",
			assertion: Assertion{Type: AssertStatus, Flag: "ghost", Enabled: enable(true)},
			wantErr:   "FLAG_NOT_FOUND",
		},
		{
			name:      "actions mismatch",
			assertion: Assertion{Type: AssertHistoryActions, Flag: "auth", Actions: []string{"created"}},
			wantErr:   "expected actions [created], got [enabled created]",
		},
		{
			name:      "count mismatch",
			assertion: Assertion{Type: AssertHistoryCount, Flag: "auth", Count: count(5)},
			wantErr:   "expected 5 records, got 2",
		},
		{
			name:      "edges mismatch",
			assertion: Assertion{Type: AssertEdges, Flag: "payments"},
			wantErr:   "expected depends_on [], got [auth]",
		},
		{
			name:      "flag present",
			assertion: Assertion{Type: AssertFlagAbsent, Flag: "auth"},
			wantErr:   "flag exists",
		},
		{
			name:      "broken chain",
			assertion: Assertion{Type: AssertChainValid, Flag: "payments"},
			wantErr:   "hash mismatch",
		},
		{
			name:      "unknown type",
			assertion: Assertion{Type: "vibes", Flag: "auth"},
			wantErr:   `unknown assertion type "vibes"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(context.Background(), newFakeQuerier(), []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.wantErr)
			assert.Contains(t, errs[0], "assertions[0] "+tt.assertion.Type)
		})
	}
}
