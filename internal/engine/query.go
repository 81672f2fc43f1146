package engine

import (
	"context"
	"slices"

	"github.com/roach88/flaggraph/internal/model"
	"github.com/roach88/flaggraph/internal/store"
)

// Status returns a flag's name and current state.
func (e *Engine) Status(ctx context.Context, name string) (model.Status, error) {
	name = model.NormalizeName(name)

	var status model.Status
	err := e.store.View(ctx, func(tx *store.Tx) error {
		flag, err := lookupFlag(ctx, tx, name)
		if err != nil {
			return err
		}
		status = model.Status{Name: flag.Name, Enabled: flag.Enabled}
		return nil
	})
	return status, err
}

// History returns a flag's audit records, newest first.
func (e *Engine) History(ctx context.Context, name string) ([]model.AuditRecord, error) {
	name = model.NormalizeName(name)

	var records []model.AuditRecord
	err := e.store.View(ctx, func(tx *store.Tx) error {
		flag, err := lookupFlag(ctx, tx, name)
		if err != nil {
			return err
		}
		records, err = tx.History(ctx, flag.ID)
		return err
	})
	return records, err
}

// ListFlags returns every flag with the names of its direct dependencies,
// ordered by creation.
func (e *Engine) ListFlags(ctx context.Context) ([]model.FlagView, error) {
	var views []model.FlagView
	err := e.store.View(ctx, func(tx *store.Tx) error {
		flags, err := tx.ListFlags(ctx)
		if err != nil {
			return err
		}
		edges, err := tx.AllEdges(ctx)
		if err != nil {
			return err
		}

		names := make(map[int64]string, len(flags))
		for _, f := range flags {
			names[f.ID] = f.Name
		}
		deps := make(map[int64][]string)
		for _, edge := range edges {
			deps[edge.SourceID] = append(deps[edge.SourceID], names[edge.TargetID])
		}

		views = make([]model.FlagView, len(flags))
		for i, f := range flags {
			views[i] = model.FlagView{Flag: f, DependsOn: deps[f.ID]}
			if views[i].DependsOn == nil {
				views[i].DependsOn = []string{}
			}
		}
		return nil
	})
	return views, err
}

// Dependencies returns the flags the named flag depends on directly, in edge order.
func (e *Engine) Dependencies(ctx context.Context, name string) ([]model.Flag, error) {
	name = model.NormalizeName(name)

	var deps []model.Flag
	err := e.store.View(ctx, func(tx *store.Tx) error {
		flag, err := lookupFlag(ctx, tx, name)
		if err != nil {
			return err
		}
		edges, err := tx.OutgoingEdges(ctx, flag.ID)
		if err != nil {
			return err
		}
		deps = make([]model.Flag, len(edges))
		for i, edge := range edges {
			deps[i] = edge.Target
		}
		return nil
	})
	return deps, err
}

// Dependents returns the flags that depend directly on the named flag, in edge order.
func (e *Engine) Dependents(ctx context.Context, name string) ([]model.Flag, error) {
	name = model.NormalizeName(name)

	var dependents []model.Flag
	err := e.store.View(ctx, func(tx *store.Tx) error {
		flag, err := lookupFlag(ctx, tx, name)
		if err != nil {
			return err
		}
		edges, err := tx.IncomingEdges(ctx, flag.ID)
		if err != nil {
			return err
		}
		dependents = make([]model.Flag, len(edges))
		for i, edge := range edges {
			dependents[i] = edge.Source
		}
		return nil
	})
	return dependents, err
}

// OperationRecords returns every audit record written by one create or
// toggle call, in seq order. Unknown ids yield an empty slice.
func (e *Engine) OperationRecords(ctx context.Context, operationID string) ([]model.AuditRecord, error) {
	var records []model.AuditRecord
	err := e.store.View(ctx, func(tx *store.Tx) error {
		var err error
		records, err = tx.OperationRecords(ctx, operationID)
		return err
	})
	return records, err
}

// VerifyHistory checks the hash chain of a flag's audit records and returns
// how many records were verified. A broken chain yields a *model.ChainError.
func (e *Engine) VerifyHistory(ctx context.Context, name string) (int, error) {
	records, err := e.History(ctx, name)
	if err != nil {
		return 0, err
	}

	// History is newest first; the chain is checked oldest first.
	slices.Reverse(records)
	if err := model.VerifyChain(records); err != nil {
		return 0, err
	}
	return len(records), nil
}
