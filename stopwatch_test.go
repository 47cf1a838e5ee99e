package monitor_test

import (
	"errors"
	"io"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	monitor "github.com/lyft/gomonitor"
	"github.com/lyft/gomonitor/mock"
)

var _ io.Closer = (*monitor.Split)(nil)

func TestStopwatchAggregates(t *testing.T) {
	m, clock := newTestManager(t)
	sw := m.MustStopwatch("aggregate")

	t0 := clock.Now()
	splits := make([]*monitor.Split, 4)
	for i := range splits {
		splits[i] = sw.Start()
	}
	if n := sw.Active(); n != 4 {
		t.Fatalf("active: want: 4 got: %d", n)
	}

	// durations 5, 1, 9, 3 in commit order 1, 3, 5, 9
	stops := []struct {
		at    time.Duration
		split int
	}{
		{1, 1},
		{3, 3},
		{5, 0},
		{9, 2},
	}
	for _, stop := range stops {
		clock.Set(t0.Add(stop.at))
		if d := splits[stop.split].Stop(); d != stop.at {
			t.Errorf("split %d: want: %s got: %s", stop.split, stop.at, d)
		}
	}

	s := sw.Sample()
	if s.Count != 4 {
		t.Errorf("Count: want: 4 got: %d", s.Count)
	}
	if s.Active != 0 {
		t.Errorf("Active: want: 0 got: %d", s.Active)
	}
	if s.Total != 18 {
		t.Errorf("Total: want: 18 got: %d", s.Total)
	}
	if s.Max != 9 || !s.MaxTimestamp.Equal(t0.Add(9)) {
		t.Errorf("Max: want: 9 at %s got: %d at %s", t0.Add(9), s.Max, s.MaxTimestamp)
	}
	if s.Min != 1 || !s.MinTimestamp.Equal(t0.Add(1)) {
		t.Errorf("Min: want: 1 at %s got: %d at %s", t0.Add(1), s.Min, s.MinTimestamp)
	}
	if s.Last != 9 {
		t.Errorf("Last: want: 9 got: %d", s.Last)
	}
	if s.MaxActive != 4 || !s.MaxActiveTimestamp.Equal(t0) {
		t.Errorf("MaxActive: want: 4 at %s got: %d at %s", t0, s.MaxActive, s.MaxActiveTimestamp)
	}
	if s.Mean != 4.5 {
		t.Errorf("Mean: want: 4.5 got: %f", s.Mean)
	}
	if exp := 35.0 / 3; math.Abs(s.Variance-exp) > 1e-9 {
		t.Errorf("Variance: want: %f got: %f", exp, s.Variance)
	}
	if exp := math.Sqrt(35.0 / 3); math.Abs(s.StandardDeviation-exp) > 1e-9 {
		t.Errorf("StandardDeviation: want: %f got: %f", exp, s.StandardDeviation)
	}
	if !s.FirstUsage.Equal(t0) || !s.LastUsage.Equal(t0.Add(9)) {
		t.Errorf("usage: want: %s - %s got: %s - %s", t0, t0.Add(9), s.FirstUsage, s.LastUsage)
	}
	if s.Name != "aggregate" || s.Kind() != monitor.KindStopwatch {
		t.Errorf("identity: %q %s", s.Name, s.Kind())
	}
	if !strings.Contains(s.String(), "count=4") {
		t.Errorf("String: %s", s)
	}
}

func TestStopwatchEmptySample(t *testing.T) {
	m, clock := newTestManager(t)
	s := m.MustStopwatch("empty").Sample()

	if s.Count != 0 || s.Total != 0 || s.Mean != 0 || s.Variance != 0 {
		t.Errorf("empty sample: %+v", s)
	}
	if s.Max != 0 || !s.MaxTimestamp.IsZero() || s.Min != 0 || !s.MinTimestamp.IsZero() {
		t.Errorf("empty extremes: %+v", s)
	}
	if !s.FirstUsage.IsZero() || !s.LastUsage.IsZero() {
		t.Errorf("empty usage: %+v", s)
	}
	if !s.Taken.Equal(clock.Now()) {
		t.Errorf("Taken: want: %s got: %s", clock.Now(), s.Taken)
	}
}

func TestStopwatchSampleIsImmutable(t *testing.T) {
	m, clock := newTestManager(t)
	sw := m.MustStopwatch("immutable")

	split := sw.Start()
	clock.Add(time.Second)
	split.Stop()
	s := sw.Sample()

	split = sw.Start()
	clock.Add(time.Second)
	split.Stop()

	if s.Count != 1 || s.Total != time.Second {
		t.Errorf("sample changed after later commits: %+v", s)
	}
}

func TestStopwatchHeldSplits(t *testing.T) {
	m, _ := newTestManager(t)
	sw := m.MustStopwatch("held")

	const N = 200
	var (
		start sync.WaitGroup
		stop  = make(chan struct{})
		done  sync.WaitGroup
	)
	start.Add(N)
	done.Add(N)
	for i := 0; i < N; i++ {
		go func() {
			defer done.Done()
			split := sw.Start()
			start.Done()
			<-stop
			split.Stop()
		}()
	}

	start.Wait()
	if n := sw.Active(); n != N {
		t.Errorf("active with all splits open: want: %d got: %d", N, n)
	}
	close(stop)
	done.Wait()

	s := sw.Sample()
	if s.Active != 0 || s.Count != N {
		t.Errorf("after closing: want active: 0 count: %d got: %d, %d", N, s.Active, s.Count)
	}
	if s.MaxActive != N {
		t.Errorf("MaxActive: want: %d got: %d", N, s.MaxActive)
	}
}

func TestSplitDoubleStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mock.NewMockLogger(ctrl)
	log.EXPECT().Warnf(gomock.Any(), "twice").Times(2)

	_, clock := newTestManager(t)
	m := monitor.NewManager(monitor.WithNow(clock.Now), monitor.WithLogger(log))
	sw := m.MustStopwatch("twice")

	split := sw.Start()
	clock.Add(time.Second)
	if d := split.Stop(); d != time.Second {
		t.Fatalf("first Stop: want: %s got: %s", time.Second, d)
	}
	if split.Running() {
		t.Error("split still running after Stop")
	}

	clock.Add(time.Second)
	if d := split.Stop(); d != time.Second {
		t.Errorf("second Stop: want the first duration %s got: %s", time.Second, d)
	}
	if err := split.Close(); !errors.Is(err, monitor.ErrDoubleClose) {
		t.Errorf("Close after Stop: want: %v got: %v", monitor.ErrDoubleClose, err)
	}

	s := sw.Sample()
	if s.Count != 1 || s.Active != 0 || s.Total != time.Second {
		t.Errorf("double stop corrupted the stopwatch: %+v", s)
	}
}

func TestStopwatchNegativeDuration(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mock.NewMockLogger(ctrl)
	log.EXPECT().Warnf(gomock.Any(), "negative", time.Duration(-1)).Times(1)

	m := monitor.NewManager(monitor.WithLogger(log))
	sw := m.MustStopwatch("negative")
	sw.AddDuration(-1)
	if n := sw.Count(); n != 0 {
		t.Errorf("negative duration recorded: count: %d", n)
	}
}

func TestSplitConcurrentStop(t *testing.T) {
	m, clock := newTestManager(t)
	sw := m.MustStopwatch("racing")

	split := sw.Start()
	clock.Add(time.Second)

	const N = 16
	var wg sync.WaitGroup
	durations := make([]time.Duration, N)
	for i := 0; i < N; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			durations[i] = split.Stop()
		}(i)
	}
	wg.Wait()

	for i, d := range durations {
		if d != time.Second && d != 0 {
			t.Errorf("Stop %d: want %s or zero got: %s", i, time.Second, d)
		}
	}
	if s := sw.Sample(); s.Count != 1 || s.Active != 0 || s.Total != time.Second {
		t.Errorf("racing stops committed more than once: %+v", s)
	}
	if d := split.Stop(); d != time.Second {
		t.Errorf("Stop after the race: want: %s got: %s", time.Second, d)
	}
}

func TestSplitClose(t *testing.T) {
	m, clock := newTestManager(t)
	sw := m.MustStopwatch("close")

	split := sw.Start()
	clock.Add(time.Millisecond)
	if err := split.Close(); err != nil {
		t.Fatal(err)
	}
	if d := split.Elapsed(); d != time.Millisecond {
		t.Errorf("Elapsed: want: %s got: %s", time.Millisecond, d)
	}
	if sw.Count() != 1 {
		t.Errorf("count: want: 1 got: %d", sw.Count())
	}
}

func TestSplitStrict(t *testing.T) {
	m := monitor.NewManager(
		monitor.WithSettings(monitor.Settings{Enabled: true, StrictSplits: true}),
		monitor.WithLogger(monitor.NewNopLogger()),
	)
	split := m.MustStopwatch("strict").Start()
	split.Stop()

	defer func() {
		if e := recover(); e != monitor.ErrDoubleClose {
			t.Errorf("recover: want: %v got: %v", monitor.ErrDoubleClose, e)
		}
	}()
	split.Stop()
}

func TestSplitElapsed(t *testing.T) {
	m, clock := newTestManager(t)
	sw := m.MustStopwatch("elapsed")

	split := sw.Start()
	if !split.StartTime().Equal(clock.Now()) {
		t.Errorf("StartTime: want: %s got: %s", clock.Now(), split.StartTime())
	}
	if split.Stopwatch() != sw {
		t.Error("split reports the wrong stopwatch")
	}
	clock.Add(3 * time.Second)
	if d := split.Elapsed(); d != 3*time.Second {
		t.Errorf("Elapsed while running: want: %s got: %s", 3*time.Second, d)
	}
	if sw.Count() != 0 {
		t.Error("Elapsed committed the split")
	}
}

func TestStopwatchTime(t *testing.T) {
	m, clock := newTestManager(t)
	sw := m.MustStopwatch("time")

	d := sw.Time(func() {
		if sw.Active() != 1 {
			t.Errorf("active inside Time: want: 1 got: %d", sw.Active())
		}
		clock.Add(2 * time.Second)
	})
	if d != 2*time.Second {
		t.Errorf("Time: want: %s got: %s", 2*time.Second, d)
	}

	func() {
		defer func() { recover() }()
		sw.Time(func() {
			clock.Add(time.Second)
			panic("boom")
		})
	}()

	s := sw.Sample()
	if s.Count != 2 || s.Active != 0 || s.Total != 3*time.Second {
		t.Errorf("Time did not close its splits: %+v", s)
	}
}

func TestStopwatchAddDuration(t *testing.T) {
	m, _ := newTestManager(t)
	sw := m.MustStopwatch("add")

	for _, d := range []time.Duration{5, 1, 9, 3} {
		sw.AddDuration(d)
	}
	sw.AddDuration(-1)

	s := sw.Sample()
	if s.Count != 4 || s.Total != 18 || s.Max != 9 || s.Min != 1 || s.Active != 0 {
		t.Errorf("AddDuration: %+v", s)
	}

	sw.Monitor().SetEnablement(monitor.Disabled)
	sw.AddDuration(100)
	if n := sw.Count(); n != 4 {
		t.Errorf("AddDuration while disabled: count: %d", n)
	}
}

func TestStopwatchMonitorSample(t *testing.T) {
	m, _ := newTestManager(t)
	sw := m.MustStopwatch("a.sw")
	sw.AddDuration(time.Second)

	s, ok := sw.Monitor().Sample().(monitor.StopwatchSample)
	if !ok {
		t.Fatalf("Monitor.Sample: got: %T", sw.Monitor().Sample())
	}
	if s.Count != 1 {
		t.Errorf("Count: want: 1 got: %d", s.Count)
	}

	parent, _ := m.Find("a")
	if u, ok := parent.Sample().(monitor.UnusedSample); !ok || u.Name != "a" {
		t.Errorf("unused sample: %#v", parent.Sample())
	}
}

func TestStopwatchStartStopAllocs(t *testing.T) {
	m, _ := newTestManager(t)
	sw := m.MustStopwatch("allocs")
	sw.Start().Stop()

	// the fixed clock makes every split zero, so no extreme is replaced
	allocs := testing.AllocsPerRun(100, func() {
		sw.Start().Stop()
	})
	if allocs > 1 {
		t.Errorf("Start/Stop: want at most the Split itself allocated, got: %.1f allocs", allocs)
	}
}

func BenchmarkStopwatch_StartStop(b *testing.B) {
	m := monitor.NewManager(monitor.WithLogger(monitor.NewNopLogger()))
	sw := m.MustStopwatch("bench")
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sw.Start().Stop()
	}
}

func BenchmarkStopwatch_Parallel(b *testing.B) {
	m := monitor.NewManager(monitor.WithLogger(monitor.NewNopLogger()))
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			split := m.MustStopwatch("bench.parallel").Start()
			split.Stop()
		}
	})
}
