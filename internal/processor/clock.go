package processor

import "sync/atomic"

// Clock allocates strictly increasing entry sequence numbers.
//
// Seq 0 is reserved for the halt entry; the first call to Next returns 1.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations), so
// concurrent Submit calls never hand out the same sequence number.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last allocated sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
