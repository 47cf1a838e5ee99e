package mock

import (
	"sync"
	"sync/atomic"
	"time"
)

// A Clock is a manually driven clock for deterministic split durations. Pass
// its Now method to monitor.WithNow. It is safe for concurrent use.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock set to start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current time of the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Add advances the clock by d.
func (c *Clock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set sets the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// A TickingClock advances by a fixed step every time Now is called, so that
// every split measures a non-zero duration without sleeping.
type TickingClock struct {
	start time.Time
	step  time.Duration
	ticks atomic.Int64
}

// NewTickingClock returns a TickingClock starting at start.
func NewTickingClock(start time.Time, step time.Duration) *TickingClock {
	return &TickingClock{start: start, step: step}
}

// Now advances the clock by one step and returns the new time.
func (c *TickingClock) Now() time.Time {
	n := c.ticks.Add(1)
	return c.start.Add(time.Duration(n) * c.step)
}

// Ticks returns the number of times Now was called.
func (c *TickingClock) Ticks() int64 { return c.ticks.Load() }
