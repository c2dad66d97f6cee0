// Package sequence issues the engine's identifiers. Every accepted command
// gets a strictly monotonic sequence number which doubles as the incoming
// order's id, replacing the collision-prone random ids of earlier designs.
package sequence

import "sync/atomic"

// Sequencer generates strictly monotonic ids. It is deterministic and
// replay-safe: resuming from the last replayed sequence continues the
// same id space.
type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer. Fresh start: start = 0. After replay:
// start = last replayed sequence.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next sequence id.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued sequence.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}

// Reset seeds the sequencer. Only used after WAL replay or snapshot load.
func (s *Sequencer) Reset(v uint64) {
	s.next.Store(v)
}
