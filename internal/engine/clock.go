package engine

import "sync/atomic"

// Clock is a monotonic logical clock. Every event the engine accepts is
// stamped with a strictly increasing seq so logs and traces order causally
// without wall-clock races.
//
// Safe for concurrent use; in practice only the enqueue paths call Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
