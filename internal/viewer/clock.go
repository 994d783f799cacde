package viewer

import "sync/atomic"

// Clock is a monotonic logical clock for journal sequence numbers.
//
// Every applied transition and every draw attempt is stamped with the next
// value. Ordering never depends on wall time, so a scripted session
// produces the same journal on every run.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose next value is start+1.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
