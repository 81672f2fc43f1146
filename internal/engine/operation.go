package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// OperationIDGenerator generates the id shared by every audit record of one
// create or toggle call.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type OperationIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 operation ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined operation ids for testing.
//
// When constructed with NewSequentialGenerator it never runs out and yields
// "<prefix>-1", "<prefix>-2", and so on.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu     sync.Mutex
	ids    []string
	prefix string
	idx    int
}

// NewFixedGenerator creates a generator that returns ids in order and panics
// once they are exhausted.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// NewSequentialGenerator creates a generator of "<prefix>-N" ids starting at 1.
func NewSequentialGenerator(prefix string) *FixedGenerator {
	return &FixedGenerator{prefix: prefix}
}

// Generate returns the next predetermined id.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.idx++
	if g.prefix != "" {
		return fmt.Sprintf("%s-%d", g.prefix, g.idx)
	}
	if g.idx > len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	return g.ids[g.idx-1]
}
