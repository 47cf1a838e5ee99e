package monitor_test

import (
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	monitor "github.com/lyft/gomonitor"
	"github.com/lyft/gomonitor/mock"
)

type stressResult struct {
	count int64
	total time.Duration
	max   time.Duration
	min   time.Duration
}

// stress drives a single stopwatch from writers goroutines performing an
// equal share of cycles start/stop pairs, resolving the stopwatch by name on
// every cycle.
func stress(t *testing.T, writers, cycles int) (monitor.StopwatchSample, stressResult) {
	t.Helper()
	clock := mock.NewTickingClock(time.Unix(1_600_000_000, 0), time.Microsecond)
	m := monitor.NewManager(
		monitor.WithNow(clock.Now),
		monitor.WithLogger(monitor.NewNopLogger()),
	)
	name := monitor.GenerateName("stress")

	var (
		total atomic.Int64
		max   atomic.Int64
		min   atomic.Int64
	)
	min.Store(int64(time.Hour))

	var g errgroup.Group
	loop := cycles / writers
	for i := 0; i < writers; i++ {
		g.Go(func() error {
			var localTotal, localMax int64
			localMin := int64(time.Hour)
			for j := 0; j < loop; j++ {
				sw, err := m.Stopwatch(name)
				if err != nil {
					return err
				}
				split := sw.Start()
				sw.Sample()
				d := int64(split.Stop())
				localTotal += d
				if d > localMax {
					localMax = d
				}
				if d < localMin {
					localMin = d
				}
			}
			total.Add(localTotal)
			for {
				curr := max.Load()
				if localMax <= curr || max.CompareAndSwap(curr, localMax) {
					break
				}
			}
			for {
				curr := min.Load()
				if localMin >= curr || min.CompareAndSwap(curr, localMin) {
					break
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	return m.MustStopwatch(name).Sample(), stressResult{
		count: int64(loop * writers),
		total: time.Duration(total.Load()),
		max:   time.Duration(max.Load()),
		min:   time.Duration(min.Load()),
	}
}

func TestStopwatchStress(t *testing.T) {
	cycles := 100_000
	if testing.Short() {
		cycles = 10_000
	}
	for _, writers := range []int{1, 2, 5, 100, 1000} {
		s, exp := stress(t, writers, cycles)
		if s.Count != exp.count {
			t.Errorf("%d writers: Count: want: %d got: %d", writers, exp.count, s.Count)
		}
		if s.Active != 0 {
			t.Errorf("%d writers: Active: want: 0 got: %d", writers, s.Active)
		}
		if s.Total != exp.total {
			t.Errorf("%d writers: Total: want: %s got: %s", writers, exp.total, s.Total)
		}
		if s.Max != exp.max {
			t.Errorf("%d writers: Max: want: %s got: %s", writers, exp.max, s.Max)
		}
		if s.Min != exp.min {
			t.Errorf("%d writers: Min: want: %s got: %s", writers, exp.min, s.Min)
		}
		if s.MaxActive < 1 || s.MaxActive > int64(writers) {
			t.Errorf("%d writers: MaxActive out of range: %d", writers, s.MaxActive)
		}
	}
}

// With a single writer every split is exactly two clock ticks, since Start,
// the Sample in between and Stop each read the clock once, so the totals are
// known upfront.
func TestStopwatchStressSingleWriter(t *testing.T) {
	const cycles = 1000
	s, _ := stress(t, 1, cycles)
	if exp := cycles * 2 * time.Microsecond; s.Total != exp {
		t.Errorf("Total: want: %s got: %s", exp, s.Total)
	}
	if s.Min != 2*time.Microsecond || s.Max != 2*time.Microsecond {
		t.Errorf("Min/Max: want: %s got: %s, %s", 2*time.Microsecond, s.Min, s.Max)
	}
}
