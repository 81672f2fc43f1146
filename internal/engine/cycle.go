package engine

import (
	"context"
	"fmt"

	"github.com/roach88/flaggraph/internal/store"
)

// edgeReader is the slice of the store the cycle check needs.
// Satisfied by *store.Tx.
type edgeReader interface {
	OutgoingEdges(ctx context.Context, flagID int64) ([]store.EdgeTarget, error)
}

// WouldCreateCycle reports whether adding the edge newFlagID → candidateID
// would close a cycle.
//
// The edge closes a cycle iff newFlagID is reachable from candidateID by
// following existing dependency edges (or the two ids are equal). The walk is
// a depth-first search with an explicit stack, so graph depth never grows the
// goroutine stack. Each node is expanded at most once.
//
// Example:
//
//	existing: checkout → payments → ledger
//	candidate edge: ledger → checkout
//	walk from checkout: checkout, payments, ledger ← reaches the new source, CYCLE
//
// The check is read-only and must run inside the same transaction that will
// insert the edge, before the insert.
func WouldCreateCycle(ctx context.Context, g edgeReader, candidateID, newFlagID int64) (bool, error) {
	if candidateID == newFlagID {
		return true, nil
	}

	visited := map[int64]bool{candidateID: true}
	stack := []int64{candidateID}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return false, fmt.Errorf("cycle check: %w", err)
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		edges, err := g.OutgoingEdges(ctx, current)
		if err != nil {
			return false, fmt.Errorf("cycle check: %w", err)
		}

		// Push in reverse so the first edge is expanded first, matching the
		// visiting order of a recursive walk.
		for i := len(edges) - 1; i >= 0; i-- {
			next := edges[i].Target.ID
			if next == newFlagID {
				return true, nil
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			stack = append(stack, next)
		}
	}

	return false, nil
}
