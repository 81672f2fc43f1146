package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/flaggraph/internal/model"
	"github.com/roach88/flaggraph/internal/store"
	"github.com/roach88/flaggraph/internal/testutil"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// setupTestEngine creates an engine over a fresh file-backed store with
// deterministic operation ids ("op-1", "op-2", ...) and timestamps.
func setupTestEngine(t *testing.T, opts ...Option) (*Engine, *store.Store) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "flags.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	base := []Option{
		WithOperationIDs(NewSequentialGenerator("op")),
		WithTimeSource(testutil.NewStepClock(time.Second).Now),
		WithLogger(discardLogger),
	}
	e, err := New(context.Background(), st, append(base, opts...)...)
	require.NoError(t, err)
	return e, st
}

func mustCreate(t *testing.T, e *Engine, name string, deps ...string) model.Flag {
	t.Helper()
	flag, err := e.CreateFlag(context.Background(), name, deps, "")
	require.NoError(t, err, "CreateFlag(%q)", name)
	return flag
}

func mustToggle(t *testing.T, e *Engine, name string, enable bool) model.Flag {
	t.Helper()
	flag, err := e.ToggleFlag(context.Background(), name, enable, "")
	require.NoError(t, err, "ToggleFlag(%q, %v)", name, enable)
	return flag
}

func mustStatus(t *testing.T, e *Engine, name string) bool {
	t.Helper()
	status, err := e.Status(context.Background(), name)
	require.NoError(t, err)
	return status.Enabled
}

func historyActions(t *testing.T, e *Engine, name string) []model.Action {
	t.Helper()
	records, err := e.History(context.Background(), name)
	require.NoError(t, err)
	actions := make([]model.Action, len(records))
	for i, rec := range records {
		actions[i] = rec.Action
	}
	return actions
}

func flagNames(flags []model.Flag) []string {
	names := make([]string, len(flags))
	for i, f := range flags {
		names[i] = f.Name
	}
	return names
}

func edgeCount(t *testing.T, st *store.Store) int {
	t.Helper()
	var n int
	err := st.View(context.Background(), func(tx *store.Tx) error {
		var err error
		n, err = tx.CountEdges(context.Background())
		return err
	})
	require.NoError(t, err)
	return n
}

func flagExists(t *testing.T, st *store.Store, name string) bool {
	t.Helper()
	var found bool
	err := st.View(context.Background(), func(tx *store.Tx) error {
		_, err := tx.FindFlagByName(context.Background(), name)
		if err == nil {
			found = true
			return nil
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	})
	require.NoError(t, err)
	return found
}

// recordingObserver captures observer notifications.
type recordingObserver struct {
	actions  []model.Action
	cascades map[string]int
	rejected []ErrorCode
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{cascades: make(map[string]int)}
}

func (o *recordingObserver) AuditRecorded(action model.Action) {
	o.actions = append(o.actions, action)
}

func (o *recordingObserver) CascadeCompleted(root string, disabled int) {
	o.cascades[root] = disabled
}

func (o *recordingObserver) OperationRejected(code ErrorCode) {
	o.rejected = append(o.rejected, code)
}
