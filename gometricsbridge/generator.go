// Package gometricsbridge copies the metrics of a github.com/rcrowley/go-metrics
// Registry into gomonitor counters.
//
// Like monitor.RuntimeStats it does nothing on its own, call GenerateStats
// whenever fresh values are wanted. go-metrics names are split on '.' and every
// segment is sanitized, so "http/requests.ok" becomes "<prefix>.http_requests.ok".
//
// Every figure is stored with Counter.Set, so a counter's max and min are the
// extremes seen across GenerateStats calls. Floats are truncated, durations
// of Timers are in nanoseconds:
//
//	counter        <name>
//	gauge          <name>
//	histogram      <name>.{count,min,max,mean,stddev}
//	meter          <name>.{count,1m,5m,15m,mean}
//	timer          <name>.{count,sum_ns,min_ns,max_ns,mean_ns,p50_ns,p95_ns,p99_ns,p999_ns}
package gometricsbridge

import (
	"strings"

	metrics "github.com/rcrowley/go-metrics"

	monitor "github.com/lyft/gomonitor"
)

var percentiles = []float64{0.5, 0.95, 0.99, 0.999}

var percentileNames = []string{"p50_ns", "p95_ns", "p99_ns", "p999_ns"}

// Generator sets counters from a metrics.Registry.
type Generator struct {
	registry metrics.Registry
	manager  *monitor.Manager
	prefix   string
}

// New returns a Generator copying r into counters of m below prefix.
func New(r metrics.Registry, m *monitor.Manager, prefix string) *Generator {
	return &Generator{registry: r, manager: m, prefix: prefix}
}

func (g *Generator) name(name string, suffix ...string) string {
	parts := []string{g.prefix}
	for _, seg := range strings.Split(name, string(monitor.HierarchyDelimiter)) {
		parts = append(parts, monitor.SanitizeSegment(seg))
	}
	return monitor.JoinName(append(parts, suffix...)...)
}

func (g *Generator) set(metric string, value int64, suffix ...string) {
	c, err := g.manager.Counter(g.name(metric, suffix...))
	if err != nil {
		g.manager.Logger().Errorf("gomonitor/gometricsbridge: metric %q: %s", metric, err)
		return
	}
	c.Set(value)
}

// GenerateStats reads every metric of the registry and sets the counters.
// Metrics of an unsupported type, and metrics whose name is bound to a
// stopwatch, are logged to the Manager's Logger and skipped.
func (g *Generator) GenerateStats() {
	g.registry.Each(func(name string, i interface{}) {
		switch metric := i.(type) {
		case metrics.Counter:
			g.set(name, metric.Count())
		case metrics.Gauge:
			g.set(name, metric.Value())
		case metrics.GaugeFloat64:
			g.set(name, int64(metric.Value()))
		case metrics.Histogram:
			m := metric.Snapshot()
			g.set(name, m.Count(), "count")
			g.set(name, m.Min(), "min")
			g.set(name, m.Max(), "max")
			g.set(name, int64(m.Mean()), "mean")
			g.set(name, int64(m.StdDev()), "stddev")
		case metrics.Meter:
			m := metric.Snapshot()
			g.set(name, m.Count(), "count")
			g.set(name, int64(m.Rate1()), "1m")
			g.set(name, int64(m.Rate5()), "5m")
			g.set(name, int64(m.Rate15()), "15m")
			g.set(name, int64(m.RateMean()), "mean")
		case metrics.Timer:
			m := metric.Snapshot()
			g.set(name, m.Count(), "count")
			g.set(name, m.Sum(), "sum_ns")
			g.set(name, m.Min(), "min_ns")
			g.set(name, m.Max(), "max_ns")
			g.set(name, int64(m.Mean()), "mean_ns")
			for i, p := range m.Percentiles(percentiles) {
				g.set(name, int64(p), percentileNames[i])
			}
		default:
			g.manager.Logger().Warnf("gomonitor/gometricsbridge: unable to record metric %q of type %T", name, i)
		}
	})
}
