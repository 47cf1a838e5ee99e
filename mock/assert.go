// Package mock provides clocks and test assertions for code instrumented with
// gomonitor.
package mock

import (
	"fmt"
	"testing"
	"time"

	monitor "github.com/lyft/gomonitor"
)

func names(m *monitor.Manager, kind monitor.Kind) (a []string) {
	for _, n := range m.Enumerate() {
		if n.Kind() == kind {
			a = append(a, n.Name())
		}
	}
	return a
}

func loadStopwatch(tb testing.TB, m *monitor.Manager, name string) (*monitor.Stopwatch, bool) {
	tb.Helper()
	if n, ok := m.Find(name); ok {
		if sw, ok := n.Stopwatch(); ok {
			return sw, true
		}
	}
	tb.Errorf("gomonitor/mock: Stopwatch (%q): not found in: %q", name, names(m, monitor.KindStopwatch))
	return nil, false
}

func loadCounter(tb testing.TB, m *monitor.Manager, name string) (*monitor.Counter, bool) {
	tb.Helper()
	if n, ok := m.Find(name); ok {
		if c, ok := n.Counter(); ok {
			return c, true
		}
	}
	tb.Errorf("gomonitor/mock: Counter (%q): not found in: %q", name, names(m, monitor.KindCounter))
	return nil, false
}

// test helpers

// AssertMonitorExists asserts that a monitor called name exists, with any kind.
func AssertMonitorExists(tb testing.TB, m *monitor.Manager, name string) {
	tb.Helper()
	if _, ok := m.Find(name); !ok {
		tb.Errorf("gomonitor/mock: Monitor (%q): not found", name)
	}
}

// AssertMonitorNotExists asserts that no monitor called name exists.
func AssertMonitorNotExists(tb testing.TB, m *monitor.Manager, name string) {
	tb.Helper()
	if n, ok := m.Find(name); ok {
		tb.Errorf("gomonitor/mock: Monitor (%q): expected Monitor to not exist, found %s", name, n.Kind())
	}
}

// AssertKind asserts that the monitor called name exists and is bound to exp.
func AssertKind(tb testing.TB, m *monitor.Manager, name string, exp monitor.Kind) {
	tb.Helper()
	n, ok := m.Find(name)
	if !ok {
		tb.Errorf("gomonitor/mock: Monitor (%q): not found", name)
		return
	}
	if k := n.Kind(); k != exp {
		tb.Errorf("gomonitor/mock: Monitor (%q) Kind: Expected: %s Got: %s", name, exp, k)
	}
}

// AssertStopwatchCount asserts that Stopwatch name is present and committed
// exp splits.
func AssertStopwatchCount(tb testing.TB, m *monitor.Manager, name string, exp int64) {
	tb.Helper()
	sw, ok := loadStopwatch(tb, m, name)
	if !ok {
		return
	}
	if n := sw.Count(); n != exp {
		tb.Errorf("gomonitor/mock: Stopwatch (%q) Count: Expected: %d Got: %d", name, exp, n)
	}
}

// AssertStopwatchActive asserts that Stopwatch name is present and has exp
// open splits.
func AssertStopwatchActive(tb testing.TB, m *monitor.Manager, name string, exp int64) {
	tb.Helper()
	sw, ok := loadStopwatch(tb, m, name)
	if !ok {
		return
	}
	if n := sw.Active(); n != exp {
		tb.Errorf("gomonitor/mock: Stopwatch (%q) Active: Expected: %d Got: %d", name, exp, n)
	}
}

// AssertStopwatchTotal asserts that Stopwatch name is present and its
// committed splits add up to exp.
func AssertStopwatchTotal(tb testing.TB, m *monitor.Manager, name string, exp time.Duration) {
	tb.Helper()
	sw, ok := loadStopwatch(tb, m, name)
	if !ok {
		return
	}
	if d := sw.Total(); d != exp {
		tb.Errorf("gomonitor/mock: Stopwatch (%q) Total: Expected: %s Got: %s", name, exp, d)
	}
}

// AssertCounterEquals asserts that Counter name is present and has value exp.
func AssertCounterEquals(tb testing.TB, m *monitor.Manager, name string, exp int64) {
	tb.Helper()
	c, ok := loadCounter(tb, m, name)
	if !ok {
		return
	}
	if v := c.Value(); v != exp {
		tb.Errorf("gomonitor/mock: Counter (%q): Expected: %d Got: %d", name, exp, v)
	}
}

var (
	_ testing.TB = (*fatalTest)(nil)
	_ testing.TB = (*fatalBench)(nil)
)

type fatalTest testing.T

func (t *fatalTest) Errorf(format string, args ...interface{}) {
	t.Fatalf(format, args...)
}

type fatalBench testing.B

func (t *fatalBench) Errorf(format string, args ...interface{}) {
	t.Fatalf(format, args...)
}

// Fatal is a wrapper around *testing.T and *testing.B that causes the Assert
// functions to immediately fail a test and stop execution. Otherwise, the
// Assert functions call tb.Errorf(), which marks the test as failed, but
// allows execution to continue.
//
//	var t *testing.T
//	mock.AssertCounterEquals(mock.Fatal(t), m, "name", 1)
func Fatal(tb testing.TB) testing.TB {
	switch t := tb.(type) {
	case *testing.T:
		return (*fatalTest)(t)
	case *testing.B:
		return (*fatalBench)(t)
	default:
		panic(fmt.Sprintf("invalid type for testing.TB: %T", tb))
	}
}
