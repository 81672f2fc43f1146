package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/flaggraph/internal/model"
	"github.com/roach88/flaggraph/internal/store"
)

// Default actors recorded when a caller does not name one.
const (
	SystemActor = "system"
	UserActor   = "user"
)

// Audit reasons for caller-initiated transitions.
const (
	ReasonCreated       = "initial creation"
	ReasonManualEnable  = "manual enable"
	ReasonManualDisable = "manual disable"
)

// Engine owns the flag graph and serializes every mutation of it.
//
// Thread-safety model:
//   - CreateFlag, ToggleFlag: safe from any goroutine, serialized by mu
//   - Status, History and the other queries: safe from any goroutine, lock-free
//
// INVARIANTS:
//   - The dependency graph is acyclic after every committed operation
//   - An enabled flag has all of its direct dependencies enabled
//   - Every committed state change has exactly one audit record
type Engine struct {
	store    *store.Store
	mu       sync.Mutex // Serializes create/toggle/cascade
	seq      *Sequencer
	opIDs    OperationIDGenerator
	now      func() time.Time
	observer Observer
	logger   *slog.Logger

	systemActor string
	userActor   string
}

// Option configures an Engine.
type Option func(*Engine)

// WithOperationIDs sets the operation id generator.
// Default: UUIDv7Generator.
func WithOperationIDs(gen OperationIDGenerator) Option {
	return func(e *Engine) {
		e.opIDs = gen
	}
}

// WithTimeSource sets the function used to stamp created_at values.
// Default: time.Now.
func WithTimeSource(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithObserver registers an observer for committed operations.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithDefaultActors overrides the actors recorded when a caller passes an
// empty actor. Empty arguments keep the current defaults.
func WithDefaultActors(system, user string) Option {
	return func(e *Engine) {
		if system != "" {
			e.systemActor = system
		}
		if user != "" {
			e.userActor = user
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over an open store.
//
// The audit sequencer resumes after the highest seq already stored. Each write
// transaction also re-reads the stored maximum before drawing, so engines in
// other processes sharing the database never collide on seq.
func New(ctx context.Context, s *store.Store, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:       s,
		opIDs:       UUIDv7Generator{},
		now:         time.Now,
		observer:    nopObserver{},
		logger:      slog.Default(),
		systemActor: SystemActor,
		userActor:   UserActor,
	}
	for _, opt := range opts {
		opt(e)
	}

	var maxSeq int64
	err := s.View(ctx, func(tx *store.Tx) error {
		var err error
		maxSeq, err = tx.MaxAuditSeq(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}
	e.seq = NewSequencer(maxSeq)

	return e, nil
}

// CreateFlag creates a disabled flag that depends on the named flags.
//
// Names are normalized and duplicate dependency names collapse to their first
// occurrence. The whole operation is one transaction: on any error nothing is
// persisted, including the node itself.
//
// Errors: INVALID_NAME, DUPLICATE_FLAG, UNRESOLVED_DEPENDENCY (with every
// missing name), CYCLE_DETECTED (self-dependency is the only cycle a new flag
// can close, but every dependency is checked).
func (e *Engine) CreateFlag(ctx context.Context, name string, dependsOn []string, actor string) (model.Flag, error) {
	name = model.NormalizeName(name)
	if name == "" {
		return model.Flag{}, e.reject("create", NewInvalidNameError())
	}
	deps, err := normalizeDependencies(dependsOn)
	if err != nil {
		return model.Flag{}, e.reject("create", err)
	}
	if actor == "" {
		actor = e.systemActor
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	opID := e.opIDs.Generate()
	now := e.now()

	var (
		created model.Flag
		records []model.AuditRecord
	)
	err = e.store.Update(ctx, func(tx *store.Tx) error {
		if err := e.syncSeq(ctx, tx); err != nil {
			return err
		}

		_, err := tx.FindFlagByName(ctx, name)
		if err == nil {
			return NewDuplicateFlagError(name)
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		// Insert first: the cycle check needs the new id.
		created, err = tx.CreateFlag(ctx, name, now)
		if errors.Is(err, store.ErrDuplicateName) {
			return NewDuplicateFlagError(name)
		}
		if err != nil {
			return err
		}

		if len(deps) > 0 {
			targets, err := e.resolveDependencies(ctx, tx, name, deps)
			if err != nil {
				return err
			}

			for _, target := range targets {
				cycle, err := WouldCreateCycle(ctx, tx, target.ID, created.ID)
				if err != nil {
					return err
				}
				if cycle {
					return NewCycleError(name, target.Name)
				}
			}

			ids := make([]int64, len(targets))
			for i, target := range targets {
				ids[i] = target.ID
			}
			if _, err := tx.AddEdges(ctx, created.ID, ids); err != nil {
				return err
			}
		}

		rec, err := e.appendAudit(ctx, tx, created, model.ActionCreated, ReasonCreated, actor, opID, now)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return model.Flag{}, e.reject("create", err)
	}

	e.logger.Info("flag created",
		"flag", name,
		"depends_on", deps,
		"actor", actor,
		"operation_id", opID)
	e.notify(records)

	return created, nil
}

// ToggleFlag enables or disables a flag.
//
// Enabling requires every direct dependency to be enabled; otherwise the
// error lists all disabled dependencies in edge order and nothing changes.
// Enabling an already-enabled flag succeeds and is still audited.
//
// Disabling always succeeds for an existing flag, is audited even when the
// flag was already disabled, and cascades to every enabled transitive
// dependent.
func (e *Engine) ToggleFlag(ctx context.Context, name string, enable bool, actor string) (model.Flag, error) {
	flag, _, err := e.ToggleFlagWithRecords(ctx, name, enable, actor)
	return flag, err
}

// ToggleFlagWithRecords is ToggleFlag that also returns the audit records the
// call committed, in write order.
func (e *Engine) ToggleFlagWithRecords(ctx context.Context, name string, enable bool, actor string) (model.Flag, []model.AuditRecord, error) {
	name = model.NormalizeName(name)
	if actor == "" {
		actor = e.userActor
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	opID := e.opIDs.Generate()
	now := e.now()

	var (
		flag    model.Flag
		records []model.AuditRecord
	)
	err := e.store.Update(ctx, func(tx *store.Tx) error {
		if err := e.syncSeq(ctx, tx); err != nil {
			return err
		}

		var err error
		flag, err = lookupFlag(ctx, tx, name)
		if err != nil {
			return err
		}

		if enable {
			deps, err := tx.OutgoingEdges(ctx, flag.ID)
			if err != nil {
				return err
			}
			var missing []string
			for _, dep := range deps {
				if !dep.Target.Enabled {
					missing = append(missing, dep.Target.Name)
				}
			}
			if len(missing) > 0 {
				return NewUnsatisfiedDependenciesError(name, missing)
			}

			if err := tx.SetEnabled(ctx, flag.ID, true); err != nil {
				return err
			}
			flag.Enabled = true

			rec, err := e.appendAudit(ctx, tx, flag, model.ActionEnabled, ReasonManualEnable, actor, opID, now)
			if err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		}

		if err := tx.SetEnabled(ctx, flag.ID, false); err != nil {
			return err
		}
		flag.Enabled = false

		rec, err := e.appendAudit(ctx, tx, flag, model.ActionDisabled, ReasonManualDisable, actor, opID, now)
		if err != nil {
			return err
		}
		records = append(records, rec)

		cascaded, err := e.disableDependents(ctx, tx, flag, actor, opID, now)
		if err != nil {
			return err
		}
		records = append(records, cascaded...)
		return nil
	})
	if err != nil {
		return model.Flag{}, nil, e.reject("toggle", err)
	}

	e.logger.Info("flag toggled",
		"flag", name,
		"enabled", enable,
		"actor", actor,
		"operation_id", opID,
		"records", len(records))
	e.notify(records)
	if !enable {
		e.observer.CascadeCompleted(name, len(records)-1)
	}

	return flag, records, nil
}

// normalizeDependencies normalizes dependency names and drops repeats,
// keeping first-occurrence order.
func normalizeDependencies(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, raw := range names {
		n := model.NormalizeName(raw)
		if n == "" {
			return nil, NewInvalidNameError()
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}

// resolveDependencies maps dependency names to flags in request order.
func (e *Engine) resolveDependencies(ctx context.Context, tx *store.Tx, name string, deps []string) ([]model.Flag, error) {
	found, err := tx.FindFlagsByNames(ctx, deps)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]model.Flag, len(found))
	for _, f := range found {
		byName[f.Name] = f
	}

	targets := make([]model.Flag, 0, len(deps))
	var missing []string
	for _, dep := range deps {
		f, ok := byName[dep]
		if !ok {
			missing = append(missing, dep)
			continue
		}
		targets = append(targets, f)
	}
	if len(missing) > 0 {
		return nil, NewUnresolvedDependencyError(name, missing)
	}
	return targets, nil
}

// syncSeq moves the sequencer past the highest seq committed by any writer.
// The write transaction holds the database lock, so the maximum cannot move
// until it ends.
func (e *Engine) syncSeq(ctx context.Context, tx *store.Tx) error {
	maxSeq, err := tx.MaxAuditSeq(ctx)
	if err != nil {
		return err
	}
	e.seq.AdvanceTo(maxSeq)
	return nil
}

// appendAudit stamps, chains and persists one audit record.
func (e *Engine) appendAudit(
	ctx context.Context,
	tx *store.Tx,
	flag model.Flag,
	action model.Action,
	reason, actor, opID string,
	now time.Time,
) (model.AuditRecord, error) {
	prev, err := tx.LastAuditHash(ctx, flag.ID)
	if err != nil {
		return model.AuditRecord{}, err
	}

	rec := model.AuditRecord{
		FlagID:      flag.ID,
		FlagName:    flag.Name,
		Action:      action,
		Reason:      reason,
		Actor:       actor,
		OperationID: opID,
		Seq:         e.seq.Next(),
		PrevHash:    prev,
		CreatedAt:   now,
	}
	rec.Hash, err = model.AuditHash(rec)
	if err != nil {
		return model.AuditRecord{}, err
	}
	return tx.AppendAudit(ctx, rec)
}

// reject reports caller errors to the observer and wraps infrastructure errors.
func (e *Engine) reject(op string, err error) error {
	var fe *FlagError
	if errors.As(err, &fe) {
		e.logger.Debug("operation rejected",
			"op", op,
			"code", string(fe.Code),
			"flag", fe.Flag)
		e.observer.OperationRejected(fe.Code)
		return fe
	}
	e.logger.Error("operation failed", "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

func (e *Engine) notify(records []model.AuditRecord) {
	for _, rec := range records {
		e.observer.AuditRecorded(rec.Action)
	}
}

// lookupFlag finds a flag by normalized name, mapping absence to FLAG_NOT_FOUND.
func lookupFlag(ctx context.Context, tx *store.Tx, name string) (model.Flag, error) {
	flag, err := tx.FindFlagByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return model.Flag{}, NewNotFoundError(name)
	}
	if err != nil {
		return model.Flag{}, err
	}
	return flag, nil
}
