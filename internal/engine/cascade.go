package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/flaggraph/internal/model"
	"github.com/roach88/flaggraph/internal/store"
)

// cascadeFrame is one level of the cascade walk: the flag that was just
// disabled and the dependents still to visit.
type cascadeFrame struct {
	trigger    model.Flag
	dependents []store.EdgeSource
	next       int
}

// disableDependents auto-disables every enabled transitive dependent of root.
//
// Visit order is depth-first preorder over incoming edges in edge order, the
// same order a recursive walk produces. Each dependent is disabled once, at
// the first point the walk reaches it, and its audit reason names the flag
// through which it was reached:
//
//	auth ← payments ← checkout
//	disable auth: payments ("dependency auth disabled"),
//	              checkout ("dependency payments disabled")
//
// Already-disabled dependents are skipped without an audit record, and the
// walk does not continue through them: a disabled flag cannot have enabled
// dependents.
//
// Must run inside the caller's write transaction.
func (e *Engine) disableDependents(
	ctx context.Context,
	tx *store.Tx,
	root model.Flag,
	actor, opID string,
	now time.Time,
) ([]model.AuditRecord, error) {
	incoming, err := tx.IncomingEdges(ctx, root.ID)
	if err != nil {
		return nil, fmt.Errorf("cascade from %s: %w", root.Name, err)
	}

	var records []model.AuditRecord
	disabled := map[int64]bool{root.ID: true}
	stack := []*cascadeFrame{{trigger: root, dependents: incoming}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("cascade from %s: %w", root.Name, err)
		}

		top := stack[len(stack)-1]
		if top.next >= len(top.dependents) {
			stack = stack[:len(stack)-1]
			continue
		}
		dep := top.dependents[top.next].Source
		top.next++

		// Source.Enabled was read when the frame was pushed; the set covers
		// flags disabled since then.
		if !dep.Enabled || disabled[dep.ID] {
			continue
		}
		disabled[dep.ID] = true

		if err := tx.SetEnabled(ctx, dep.ID, false); err != nil {
			return nil, fmt.Errorf("cascade disable %s: %w", dep.Name, err)
		}
		dep.Enabled = false

		reason := fmt.Sprintf("dependency %s disabled", top.trigger.Name)
		rec, err := e.appendAudit(ctx, tx, dep, model.ActionAutoDisabled, reason, actor, opID, now)
		if err != nil {
			return nil, fmt.Errorf("cascade disable %s: %w", dep.Name, err)
		}
		records = append(records, rec)

		e.logger.Debug("auto-disabled dependent",
			"flag", dep.Name,
			"trigger", top.trigger.Name,
			"root", root.Name)

		next, err := tx.IncomingEdges(ctx, dep.ID)
		if err != nil {
			return nil, fmt.Errorf("cascade from %s: %w", dep.Name, err)
		}
		stack = append(stack, &cascadeFrame{trigger: dep, dependents: next})
	}

	return records, nil
}
