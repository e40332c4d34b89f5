package idgen

import "sync"

// Stamper issues strictly increasing millisecond stamps.
// When the clock repeats or steps back, the previous stamp plus one is used.
type Stamper struct {
	mu    sync.Mutex
	clock Clock
	last  int64
}

// NewStamper creates a Stamper on top of clock (SystemClock when nil).
func NewStamper(clock Clock) *Stamper {
	if clock == nil {
		clock = &SystemClock{}
	}
	return &Stamper{clock: clock, last: -1}
}

// Next returns the next stamp.
func (s *Stamper) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if now <= s.last {
		now = s.last + 1
	}
	s.last = now
	return now
}
