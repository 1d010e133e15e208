package core

import "sync/atomic"

// Counter is an increment-only integer that is safe for concurrent use.
// The zero value is ready to use and starts at 0.
//
// Increment and Value are linearizable: every Value call returns a number
// the counter actually held, and no Increment is ever lost.
type Counter struct {
	n atomic.Int64
}

// Increment adds one to the counter.
func (c *Counter) Increment() {
	c.n.Add(1)
}

// Value returns the current count.
func (c *Counter) Value() int64 {
	return c.n.Load()
}
