package monitor_test

import (
	"sync"
	"testing"
	"time"

	monitor "github.com/lyft/gomonitor"
)

func TestCounter(t *testing.T) {
	m, clock := newTestManager(t)
	c := m.MustCounter("counter")
	t0 := clock.Now()

	c.Add(5)
	clock.Add(time.Second)
	c.Sub(8) // -3
	clock.Add(time.Second)
	c.Inc() // -2
	clock.Add(time.Second)
	c.Set(10)
	clock.Add(time.Second)
	c.Dec() // 9

	s := c.Sample()
	if s.Value != 9 || c.Value() != 9 || c.String() != "9" {
		t.Errorf("Value: want: 9 got: %d", s.Value)
	}
	if s.Max != 10 || !s.MaxTimestamp.Equal(t0.Add(3*time.Second)) {
		t.Errorf("Max: want: 10 at %s got: %d at %s", t0.Add(3*time.Second), s.Max, s.MaxTimestamp)
	}
	if s.Min != -3 || !s.MinTimestamp.Equal(t0.Add(time.Second)) {
		t.Errorf("Min: want: -3 at %s got: %d at %s", t0.Add(time.Second), s.Min, s.MinTimestamp)
	}
	if s.IncrementSum != 6 || s.DecrementSum != 9 {
		t.Errorf("sums: want: 6, 9 got: %d, %d", s.IncrementSum, s.DecrementSum)
	}
	if !s.FirstUsage.Equal(t0) || !s.LastUsage.Equal(t0.Add(4*time.Second)) {
		t.Errorf("usage: got: %s - %s", s.FirstUsage, s.LastUsage)
	}
	if s.Kind() != monitor.KindCounter || s.MonitorName() != "counter" {
		t.Errorf("identity: %s %q", s.Kind(), s.MonitorName())
	}
}

func TestCounterEmptySample(t *testing.T) {
	m, _ := newTestManager(t)
	s := m.MustCounter("empty").Sample()
	if s.Value != 0 || s.Max != 0 || s.Min != 0 || !s.MaxTimestamp.IsZero() || !s.MinTimestamp.IsZero() {
		t.Errorf("empty sample: %+v", s)
	}
}

func TestCounterDisabled(t *testing.T) {
	m, _ := newTestManager(t)
	c := m.MustCounter("a.counter")
	c.Set(1)

	a, _ := m.Find("a")
	a.SetEnablement(monitor.Disabled)
	c.Add(10)
	c.Sub(10)
	c.Set(100)
	if v := c.Value(); v != 1 {
		t.Errorf("disabled counter changed: %d", v)
	}

	a.SetEnablement(monitor.Inherit)
	c.Inc()
	if v := c.Value(); v != 2 {
		t.Errorf("re-enabled counter: want: 2 got: %d", v)
	}
}

func TestCounterConcurrent(t *testing.T) {
	m, _ := newTestManager(t)
	c := m.MustCounter("concurrent")

	const (
		goroutines = 50
		loops      = 1000
	)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < loops; j++ {
				if i%2 == 0 {
					c.Inc()
				} else {
					c.Add(2)
				}
			}
		}(i)
	}
	wg.Wait()

	exp := int64(goroutines/2*loops + goroutines/2*loops*2)
	s := c.Sample()
	if s.Value != exp {
		t.Errorf("Value: want: %d got: %d", exp, s.Value)
	}
	// increments only, so the last value is the largest one seen
	if s.Max != exp {
		t.Errorf("Max: want: %d got: %d", exp, s.Max)
	}
	if s.Min < 1 || s.Min > 2 {
		t.Errorf("Min: want 1 or 2 got: %d", s.Min)
	}
}
