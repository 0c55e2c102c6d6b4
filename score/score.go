// Package score keeps the running score of a level.
package score

import "sync/atomic"

// Default rewards.
const (
	DefaultReward  = 200
	DefaultPenalty = 50
)

// Sink accumulates hits and misses. Record is called by one goroutine; Value
// may be read from any.
type Sink struct {
	reward  int64
	penalty int64

	value  atomic.Int64
	hits   atomic.Uint64
	misses atomic.Uint64
}

// New returns a zeroed sink. penalty is subtracted, so pass it positive.
func New(reward, penalty int) *Sink {
	return &Sink{
		reward:  int64(reward),
		penalty: int64(penalty),
	}
}

// Record adds the reward for a hit or subtracts the penalty for a miss and
// returns the new score.
func (s *Sink) Record(hit bool) int {
	if hit {
		s.hits.Add(1)
		return int(s.value.Add(s.reward))
	}

	s.misses.Add(1)
	return int(s.value.Add(-s.penalty))
}

func (s *Sink) Value() int {
	return int(s.value.Load())
}

func (s *Sink) Hits() uint64 {
	return s.hits.Load()
}

func (s *Sink) Misses() uint64 {
	return s.misses.Load()
}

// Reset zeroes the score and the counters.
func (s *Sink) Reset() {
	s.value.Store(0)
	s.hits.Store(0)
	s.misses.Store(0)
}
