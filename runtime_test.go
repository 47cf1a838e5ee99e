package monitor_test

import (
	"testing"

	monitor "github.com/lyft/gomonitor"
)

func TestRuntime(t *testing.T) {
	m, _ := newTestManager(t)

	g, err := monitor.NewRuntimeStats(m, "runtime")
	if err != nil {
		t.Fatal(err)
	}
	g.GenerateStats()

	for _, name := range []string{
		"runtime.alloc",
		"runtime.totalAlloc",
		"runtime.sys",
		"runtime.mallocs",
		"runtime.heapSys",
		"runtime.numGoroutine",
	} {
		c, err := m.Counter(name)
		if err != nil {
			t.Fatal(err)
		}
		if c.Value() <= 0 {
			t.Errorf("%s: want a positive value got: %d", name, c.Value())
		}
	}
	if _, err := m.Counter("runtime.numGC"); err != nil {
		t.Error(err)
	}
}

func TestRuntimeKindMismatch(t *testing.T) {
	m, _ := newTestManager(t)
	m.MustStopwatch("runtime.alloc")

	if _, err := monitor.NewRuntimeStats(m, "runtime"); err == nil {
		t.Error("expected an error when a runtime name is bound to a stopwatch")
	}
}
