package store

import "sync/atomic"

// Sequencer hands out monotonically increasing entity IDs. It is seeded from
// the highest ID found in the backing store, not persisted on its own.
type Sequencer struct {
	last atomic.Int64
}

func (s *Sequencer) Reseed(max int64) {
	s.last.Store(max)
}

func (s *Sequencer) Next() int64 {
	return s.last.Add(1)
}

func (s *Sequencer) Current() int64 {
	return s.last.Load()
}
