package harness

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/flaggraph/internal/engine"
	"github.com/roach88/flaggraph/internal/model"
)

// Querier is the read side of the engine that assertions use.
// Satisfied by *engine.Engine.
type Querier interface {
	Status(ctx context.Context, name string) (model.Status, error)
	History(ctx context.Context, name string) ([]model.AuditRecord, error)
	Dependencies(ctx context.Context, name string) ([]model.Flag, error)
	VerifyHistory(ctx context.Context, name string) (int, error)
}

// EvaluateAssertions checks every assertion and returns one message per
// failure. An empty slice means all assertions passed.
func EvaluateAssertions(ctx context.Context, q Querier, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(ctx, q, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d] %s %s: %v", i, a.Type, a.Flag, err))
		}
	}
	return errs
}

func evaluateAssertion(ctx context.Context, q Querier, a Assertion) error {
	switch a.Type {
	case AssertStatus:
		return assertStatus(ctx, q, a)
	case AssertHistoryActions:
		return assertHistoryActions(ctx, q, a)
	case AssertHistoryCount:
		return assertHistoryCount(ctx, q, a)
	case AssertEdges:
		return assertEdges(ctx, q, a)
	case AssertFlagAbsent:
		return assertFlagAbsent(ctx, q, a)
	case AssertChainValid:
		_, err := q.VerifyHistory(ctx, a.Flag)
		return err
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertStatus(ctx context.Context, q Querier, a Assertion) error {
	status, err := q.Status(ctx, a.Flag)
	if err != nil {
		return err
	}
	if status.Enabled != *a.Enabled {
		return fmt.Errorf("expected enabled=%v, got %v", *a.Enabled, status.Enabled)
	}
	return nil
}

func assertHistoryActions(ctx context.Context, q Querier, a Assertion) error {
	records, err := q.History(ctx, a.Flag)
	if err != nil {
		return err
	}
	got := make([]string, len(records))
	for i, rec := range records {
		got[i] = rec.Action.String()
	}
	if !slices.Equal(got, a.Actions) {
		return fmt.Errorf("expected actions %v, got %v", a.Actions, got)
	}
	return nil
}

func assertHistoryCount(ctx context.Context, q Querier, a Assertion) error {
	records, err := q.History(ctx, a.Flag)
	if err != nil {
		return err
	}
	if len(records) != *a.Count {
		return fmt.Errorf("expected %d records, got %d", *a.Count, len(records))
	}
	return nil
}

func assertEdges(ctx context.Context, q Querier, a Assertion) error {
	deps, err := q.Dependencies(ctx, a.Flag)
	if err != nil {
		return err
	}
	got := make([]string, len(deps))
	for i, d := range deps {
		got[i] = d.Name
	}
	want := a.DependsOn
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(got, want) {
		return fmt.Errorf("expected depends_on %v, got %v", want, got)
	}
	return nil
}

func assertFlagAbsent(ctx context.Context, q Querier, a Assertion) error {
	_, err := q.Status(ctx, a.Flag)
	if err == nil {
		return fmt.Errorf("flag exists")
	}
	if !engine.IsNotFound(err) {
		return err
	}
	return nil
}
