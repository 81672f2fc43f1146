package engine

import "sync/atomic"

// Sequencer hands out audit seq numbers.
//
// Seq values are strictly increasing across every flag and survive restarts:
// New seeds the Sequencer from the highest seq already in the audit log, and
// every write transaction advances it past the stored maximum before drawing.
// Numbers drawn by an operation that later rolls back are simply skipped, so
// the log may have gaps but never repeats.
//
// Thread-safety: Sequencer is safe for concurrent use (atomic operations).
type Sequencer struct {
	seq atomic.Int64
}

// NewSequencer creates a sequencer whose next value is start+1.
func NewSequencer(start int64) *Sequencer {
	s := &Sequencer{}
	s.seq.Store(start)
	return s
}

// Next returns the next seq number.
func (s *Sequencer) Next() int64 {
	return s.seq.Add(1)
}

// Current returns the last seq handed out without advancing.
func (s *Sequencer) Current() int64 {
	return s.seq.Load()
}

// AdvanceTo moves the sequencer forward so the next value exceeds seq.
// It never moves backwards.
func (s *Sequencer) AdvanceTo(seq int64) {
	for {
		cur := s.seq.Load()
		if cur >= seq {
			return
		}
		if s.seq.CompareAndSwap(cur, seq) {
			return
		}
	}
}
