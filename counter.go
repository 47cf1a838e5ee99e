package monitor

import (
	"strconv"
	"sync/atomic"
	"time"
)

// A Counter is a signed value that can be incremented, decremented and set.
// It tracks the largest and smallest value it ever held. Updates are no-ops
// while the counter is disabled.
type Counter struct {
	mon *Monitor

	value        atomic.Int64
	incrementSum atomic.Int64
	decrementSum atomic.Int64

	max atomic.Pointer[extreme]
	min atomic.Pointer[extreme]

	usage usage
}

func newCounter(mon *Monitor) *Counter {
	return &Counter{mon: mon}
}

// Name returns the monitor name.
func (c *Counter) Name() string { return c.mon.name }

// Monitor returns the monitor node the counter is bound to.
func (c *Counter) Monitor() *Monitor { return c.mon }

// Add increments the Counter by delta.
func (c *Counter) Add(delta int64) {
	if !c.mon.IsEnabled() {
		return
	}
	c.incrementSum.Add(delta)
	c.observe(c.value.Add(delta))
}

// Sub decrements the Counter by delta.
func (c *Counter) Sub(delta int64) {
	if !c.mon.IsEnabled() {
		return
	}
	c.decrementSum.Add(delta)
	c.observe(c.value.Add(-delta))
}

// Inc increments the Counter by 1.
func (c *Counter) Inc() { c.Add(1) }

// Dec decrements the Counter by 1.
func (c *Counter) Dec() { c.Sub(1) }

// Set sets the Counter to value.
func (c *Counter) Set(value int64) {
	if !c.mon.IsEnabled() {
		return
	}
	c.value.Store(value)
	c.observe(value)
}

func (c *Counter) observe(v int64) {
	now := c.mon.tree.now()
	storeMax(&c.max, v, now)
	storeMin(&c.min, v, now)
	c.usage.touch(now)
}

// Value returns the current value.
func (c *Counter) Value() int64 { return c.value.Load() }

// String returns the current value as a string.
func (c *Counter) String() string {
	return strconv.FormatInt(c.Value(), 10)
}

// Sample returns a snapshot of the counter.
func (c *Counter) Sample() CounterSample {
	sample := CounterSample{
		Name:         c.mon.name,
		Taken:        c.mon.tree.now(),
		Value:        c.value.Load(),
		IncrementSum: c.incrementSum.Load(),
		DecrementSum: c.decrementSum.Load(),
	}
	sample.Max, sample.MaxTimestamp = loadExtreme(&c.max)
	sample.Min, sample.MinTimestamp = loadExtreme(&c.min)
	sample.FirstUsage, sample.LastUsage = c.usage.load()
	return sample
}

// CounterSample is a snapshot of a Counter.
type CounterSample struct {
	Name  string
	Taken time.Time

	Value int64

	// Max and Min are zero, with zero timestamps, until the first update.
	Max          int64
	MaxTimestamp time.Time
	Min          int64
	MinTimestamp time.Time

	IncrementSum int64
	DecrementSum int64

	FirstUsage time.Time
	LastUsage  time.Time
}

// MonitorName implements Sample.
func (s CounterSample) MonitorName() string { return s.Name }

// Kind implements Sample.
func (CounterSample) Kind() Kind { return KindCounter }

func (s CounterSample) String() string {
	b := make([]byte, 0, 96)
	b = append(b, "Counter "...)
	b = strconv.AppendQuote(b, s.Name)
	b = append(b, " [value="...)
	b = strconv.AppendInt(b, s.Value, 10)
	b = append(b, " min="...)
	b = strconv.AppendInt(b, s.Min, 10)
	b = append(b, " max="...)
	b = strconv.AppendInt(b, s.Max, 10)
	b = append(b, ']')
	return string(b)
}

// UnusedSample is the snapshot of a monitor that is not bound to a kind.
type UnusedSample struct {
	Name  string
	Taken time.Time
}

// MonitorName implements Sample.
func (s UnusedSample) MonitorName() string { return s.Name }

// Kind implements Sample.
func (UnusedSample) Kind() Kind { return KindUnused }

func (s UnusedSample) String() string {
	return "Unused " + strconv.Quote(s.Name)
}
