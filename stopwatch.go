package monitor

import (
	"math"
	"strconv"
	"sync/atomic"
	"time"
)

// A Stopwatch accumulates the durations of Splits. All methods are safe for
// concurrent use and none of them take a lock.
//
// Fields are updated independently, a Sample taken while splits are being
// committed may see, for example, Count incremented before Total. Each field
// on its own is always a value some sequence of commits produced.
type Stopwatch struct {
	mon *Monitor

	total      atomic.Int64 // nanoseconds
	count      atomic.Int64
	active     atomic.Int64
	last       atomic.Int64
	sumSquares atomic.Uint64 // float64 bits, nanoseconds squared

	max       atomic.Pointer[extreme]
	min       atomic.Pointer[extreme]
	maxActive atomic.Pointer[extreme]

	usage usage
}

func newStopwatch(mon *Monitor) *Stopwatch {
	return &Stopwatch{mon: mon}
}

// Name returns the monitor name.
func (s *Stopwatch) Name() string { return s.mon.name }

// Monitor returns the monitor node the stopwatch is bound to.
func (s *Stopwatch) Monitor() *Monitor { return s.mon }

// Start opens a Split. The Split must be stopped exactly once, typically with
// defer:
//
//	defer sw.Start().Stop()
//
// If the stopwatch is disabled the returned Split is valid but stopping it
// does not record anything.
func (s *Stopwatch) Start() *Split {
	now := s.mon.tree.now()
	if !s.mon.IsEnabled() {
		return &Split{stopwatch: s, start: now}
	}
	active := s.active.Add(1)
	storeMax(&s.maxActive, active, now)
	s.usage.touch(now)
	return &Split{stopwatch: s, start: now, counted: true}
}

// Time runs fn in a Split and returns the split's duration. The split is
// stopped even if fn panics.
func (s *Stopwatch) Time(fn func()) (d time.Duration) {
	split := s.Start()
	defer func() { d = split.Stop() }()
	fn()
	return
}

// AddDuration records d as a completed split without affecting Active. It is
// a no-op if the stopwatch is disabled. Negative durations are dropped.
func (s *Stopwatch) AddDuration(d time.Duration) {
	if d < 0 {
		s.mon.tree.log.Warnf("gomonitor: stopwatch %q: dropping negative duration: %s", s.mon.name, d)
		return
	}
	if !s.mon.IsEnabled() {
		return
	}
	s.record(d, s.mon.tree.now())
}

// commit is called once for every counted Split.
func (s *Stopwatch) commit(d time.Duration, now time.Time) {
	s.active.Add(-1)
	s.record(d, now)
}

func (s *Stopwatch) record(d time.Duration, now time.Time) {
	ns := int64(d)
	s.count.Add(1)
	s.total.Add(ns)
	s.last.Store(ns)
	atomicAddFloat64(&s.sumSquares, float64(ns)*float64(ns))
	storeMax(&s.max, ns, now)
	storeMin(&s.min, ns, now)
	s.usage.touch(now)
}

// Active returns the number of open, counted Splits.
func (s *Stopwatch) Active() int64 { return s.active.Load() }

// Count returns the number of committed splits.
func (s *Stopwatch) Count() int64 { return s.count.Load() }

// Total returns the sum of all committed split durations.
func (s *Stopwatch) Total() time.Duration { return time.Duration(s.total.Load()) }

// Sample returns a snapshot of the stopwatch.
func (s *Stopwatch) Sample() StopwatchSample {
	taken := s.mon.tree.now()

	total := s.total.Load()
	count := s.count.Load()
	sumSquares := atomicLoadFloat64(&s.sumSquares)

	sample := StopwatchSample{
		Name:   s.mon.name,
		Taken:  taken,
		Total:  time.Duration(total),
		Count:  count,
		Active: s.active.Load(),
		Last:   time.Duration(s.last.Load()),
	}

	var v int64
	v, sample.MaxTimestamp = loadExtreme(&s.max)
	sample.Max = time.Duration(v)
	v, sample.MinTimestamp = loadExtreme(&s.min)
	sample.Min = time.Duration(v)
	sample.MaxActive, sample.MaxActiveTimestamp = loadExtreme(&s.maxActive)
	sample.FirstUsage, sample.LastUsage = s.usage.load()

	if count > 0 {
		n := float64(count)
		sample.Mean = float64(total) / n
		if count > 1 {
			variance := (sumSquares - float64(total)*float64(total)/n) / (n - 1)
			// concurrent commits may skew the fields read above
			if variance > 0 {
				sample.Variance = variance
				sample.StandardDeviation = math.Sqrt(variance)
			}
		}
	}
	return sample
}

// StopwatchSample is a snapshot of a Stopwatch. Durations are nanosecond
// precision, Mean, Variance and StandardDeviation are in nanoseconds (squared
// for Variance).
type StopwatchSample struct {
	Name  string
	Taken time.Time

	Total  time.Duration
	Count  int64
	Active int64
	Last   time.Duration

	// Max and Min are zero, with zero timestamps, until the first commit.
	Max          time.Duration
	MaxTimestamp time.Time
	Min          time.Duration
	MinTimestamp time.Time

	MaxActive          int64
	MaxActiveTimestamp time.Time

	FirstUsage time.Time
	LastUsage  time.Time

	// Mean is zero when Count is zero. Variance is the sample variance and is
	// zero when Count is less than two.
	Mean              float64
	Variance          float64
	StandardDeviation float64
}

// MonitorName implements Sample.
func (s StopwatchSample) MonitorName() string { return s.Name }

// Kind implements Sample.
func (StopwatchSample) Kind() Kind { return KindStopwatch }

func (s StopwatchSample) String() string {
	b := make([]byte, 0, 160)
	b = append(b, "Stopwatch "...)
	b = strconv.AppendQuote(b, s.Name)
	b = append(b, " [count="...)
	b = strconv.AppendInt(b, s.Count, 10)
	b = append(b, " total="...)
	b = append(b, s.Total.String()...)
	b = append(b, " mean="...)
	b = append(b, time.Duration(s.Mean).String()...)
	b = append(b, " min="...)
	b = append(b, s.Min.String()...)
	b = append(b, " max="...)
	b = append(b, s.Max.String()...)
	b = append(b, " active="...)
	b = strconv.AppendInt(b, s.Active, 10)
	b = append(b, " max_active="...)
	b = strconv.AppendInt(b, s.MaxActive, 10)
	b = append(b, ']')
	return string(b)
}
