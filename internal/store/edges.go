package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/flaggraph/internal/model"
)

// EdgeTarget is an outgoing edge together with the flag it points to.
type EdgeTarget struct {
	Edge   model.Edge
	Target model.Flag
}

// EdgeSource is an incoming edge together with the flag that declared it.
type EdgeSource struct {
	Edge   model.Edge
	Source model.Flag
}

// AddEdges inserts one edge per target, all with the given source, in the
// order given. No dedup check is made here; a repeated (source, target) pair
// fails on the UNIQUE constraint.
func (t *Tx) AddEdges(ctx context.Context, sourceID int64, targetIDs []int64) ([]model.Edge, error) {
	edges := make([]model.Edge, 0, len(targetIDs))
	for _, targetID := range targetIDs {
		result, err := t.tx.ExecContext(ctx, `
			INSERT INTO dependencies (source_id, target_id)
			VALUES (?, ?)
		`, sourceID, targetID)
		if err != nil {
			return nil, fmt.Errorf("add edge %d -> %d: %w", sourceID, targetID, err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("add edge %d -> %d: last insert id: %w", sourceID, targetID, err)
		}
		edges = append(edges, model.Edge{ID: id, SourceID: sourceID, TargetID: targetID})
	}
	return edges, nil
}

// OutgoingEdges returns the edges whose source is flagID, joined with their
// target flags, in insertion order.
func (t *Tx) OutgoingEdges(ctx context.Context, flagID int64) ([]EdgeTarget, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT d.id, d.source_id, d.target_id, f.id, f.name, f.enabled, f.created_at
		FROM dependencies d
		JOIN flags f ON f.id = d.target_id
		WHERE d.source_id = ?
		ORDER BY d.id ASC
	`, flagID)
	if err != nil {
		return nil, fmt.Errorf("query outgoing edges of %d: %w", flagID, err)
	}
	defer rows.Close()

	out := []EdgeTarget{}
	for rows.Next() {
		var et EdgeTarget
		var createdAt int64
		if err := rows.Scan(
			&et.Edge.ID, &et.Edge.SourceID, &et.Edge.TargetID,
			&et.Target.ID, &et.Target.Name, &et.Target.Enabled, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan outgoing edge: %w", err)
		}
		et.Target.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, et)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outgoing edges: %w", err)
	}
	return out, nil
}

// IncomingEdges returns the edges whose target is flagID, joined with their
// source flags, in insertion order.
func (t *Tx) IncomingEdges(ctx context.Context, flagID int64) ([]EdgeSource, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT d.id, d.source_id, d.target_id, f.id, f.name, f.enabled, f.created_at
		FROM dependencies d
		JOIN flags f ON f.id = d.source_id
		WHERE d.target_id = ?
		ORDER BY d.id ASC
	`, flagID)
	if err != nil {
		return nil, fmt.Errorf("query incoming edges of %d: %w", flagID, err)
	}
	defer rows.Close()

	in := []EdgeSource{}
	for rows.Next() {
		var es EdgeSource
		var createdAt int64
		if err := rows.Scan(
			&es.Edge.ID, &es.Edge.SourceID, &es.Edge.TargetID,
			&es.Source.ID, &es.Source.Name, &es.Source.Enabled, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan incoming edge: %w", err)
		}
		es.Source.CreatedAt = time.Unix(0, createdAt).UTC()
		in = append(in, es)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incoming edges: %w", err)
	}
	return in, nil
}

// AllEdges returns every edge in insertion order.
func (t *Tx) AllEdges(ctx context.Context) ([]model.Edge, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, source_id, target_id
		FROM dependencies
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	edges := []model.Edge{}
	for rows.Next() {
		var e model.Edge
		if err := rows.Scan(&e.ID, &e.SourceID, &e.TargetID); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}
	return edges, nil
}

// CountEdges returns the total number of edges.
func (t *Tx) CountEdges(ctx context.Context) (int, error) {
	var n int
	if err := t.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM dependencies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count edges: %w", err)
	}
	return n, nil
}
