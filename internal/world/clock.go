package world

import (
	"sync/atomic"
	"time"
)

// Clock is the server tick clock in milliseconds. The game loop advances it
// once per tick; every other goroutine only reads.
type Clock struct {
	now atomic.Int64
}

// NewClock starts the clock at the given wall time.
func NewClock(start time.Time) *Clock {
	c := &Clock{}
	c.now.Store(start.UnixMilli())
	return c
}

// Now returns the current tick timestamp in ms.
func (c *Clock) Now() int64 { return c.now.Load() }

// Advance moves the clock forward by dt.
func (c *Clock) Advance(dt time.Duration) int64 {
	return c.now.Add(dt.Milliseconds())
}

// Set jumps the clock to an absolute ms value (tests and catch-up after stalls).
func (c *Clock) Set(ms int64) { c.now.Store(ms) }
