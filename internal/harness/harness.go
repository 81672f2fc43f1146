package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/flaggraph/internal/engine"
	"github.com/roach88/flaggraph/internal/model"
	"github.com/roach88/flaggraph/internal/store"
	"github.com/roach88/flaggraph/internal/testutil"
)

// stepIDs hands out "step-N" operation ids and remembers the last one, so
// the harness can fetch the records a call produced.
type stepIDs struct {
	n    int
	last string
}

func (g *stepIDs) Generate() string {
	g.n++
	g.last = fmt.Sprintf("step-%d", g.n)
	return g.last
}

// Harness executes scenario steps against one engine.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	ids    *stepIDs
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database and engine
// 2. Execute setup steps (any error aborts the run)
// 3. Execute flow steps, checking expectations and tracing audit records
// 4. Evaluate assertions
//
// The returned error is reserved for infrastructure failures and setup
// failures; failed expectations and assertions are reported in the Result.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ids := &stepIDs{}
	clock := testutil.NewStepClock(time.Second)
	eng, err := engine.New(ctx, st,
		engine.WithOperationIDs(ids),
		engine.WithTimeSource(clock.Now),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	h := &Harness{store: st, engine: eng, ids: ids}

	for i, step := range scenario.Setup {
		if err := h.execute(ctx, step); err != nil {
			return nil, fmt.Errorf("setup[%d] %s %s: %w", i, step.Op(), step.Flag(), err)
		}
	}

	result := NewResult()
	for i, step := range scenario.Flow {
		if err := h.executeFlowStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("flow[%d] %s %s: %w", i, step.Op(), step.Flag(), err)
		}
	}

	for _, msg := range EvaluateAssertions(ctx, eng, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// execute performs one create or toggle call.
func (h *Harness) execute(ctx context.Context, step Step) error {
	if step.Create != "" {
		_, err := h.engine.CreateFlag(ctx, step.Create, step.DependsOn, step.Actor)
		return err
	}
	_, err := h.engine.ToggleFlag(ctx, step.Toggle, *step.Enable, step.Actor)
	return err
}

// executeFlowStep runs a step, checks its expectation and appends its trace.
// Only infrastructure errors are returned.
func (h *Harness) executeFlowStep(ctx context.Context, index int, step Step, result *Result) error {
	issued := h.ids.n
	stepErr := h.execute(ctx, step)

	var fe *engine.FlagError
	if stepErr != nil && !errors.As(stepErr, &fe) {
		return stepErr
	}

	// Calls rejected before taking the write lock never draw an id.
	var (
		opID    string
		records []model.AuditRecord
	)
	if h.ids.n != issued {
		opID = h.ids.last
		var err error
		records, err = h.engine.OperationRecords(ctx, opID)
		if err != nil {
			return err
		}
	}

	event := TraceEvent{
		Step:        index + 1,
		Op:          step.Op(),
		Flag:        step.Flag(),
		OperationID: opID,
		Outcome:     "ok",
		Records:     make([]TraceRecord, len(records)),
	}
	if fe != nil {
		event.Outcome = string(fe.Code)
	}
	for i, rec := range records {
		event.Records[i] = TraceRecord{
			Seq:    rec.Seq,
			Flag:   rec.FlagName,
			Action: rec.Action.String(),
			Reason: rec.Reason,
			Actor:  rec.Actor,
		}
	}
	result.Trace = append(result.Trace, event)

	where := fmt.Sprintf("flow[%d] %s %s", index, step.Op(), step.Flag())
	expect := step.Expect
	switch {
	case expect == nil && fe != nil:
		result.AddError(fmt.Sprintf("%s: unexpected error: %v", where, fe))
	case expect != nil && fe == nil:
		result.AddError(fmt.Sprintf("%s: expected error %s, got success", where, expect.Error))
	case expect != nil:
		if string(fe.Code) != expect.Error {
			result.AddError(fmt.Sprintf("%s: expected error %s, got %s", where, expect.Error, fe.Code))
		}
		if expect.Missing != nil && !slices.Equal(expect.Missing, fe.Missing) {
			result.AddError(fmt.Sprintf("%s: expected missing %v, got %v", where, expect.Missing, fe.Missing))
		}
		if expect.Dependency != "" && expect.Dependency != fe.Dependency {
			result.AddError(fmt.Sprintf("%s: expected dependency %q, got %q", where, expect.Dependency, fe.Dependency))
		}
	}

	return nil
}
