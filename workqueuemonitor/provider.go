// Package workqueuemonitor provides a gomonitor bridge for the Kubernetes
// workqueue.
//
// This package is written under the assumption that we're coding
// against the metrics logic as defined here:
// https://github.com/kubernetes/client-go/blob/v0.31.0/util/workqueue/metrics.go
//
// For a queue called "jobs" under prefix "kube" the monitors are:
//
//	kube.jobs.depth                         counter
//	kube.jobs.adds                          counter
//	kube.jobs.retries                       counter
//	kube.jobs.latency                       stopwatch
//	kube.jobs.work_duration                 stopwatch
//	kube.jobs.unfinished_work_us            counter
//	kube.jobs.longest_running_processor_us  counter
//
// NOTE: the workqueue reports durations as floats representing seconds. The
// two settable gauges are stored in counters, which only hold integers, so
// they are converted to microseconds here.
package workqueuemonitor

import (
	"time"

	monitor "github.com/lyft/gomonitor"
	"k8s.io/client-go/util/workqueue"
)

// Provider implements workqueue.MetricsProvider. A metric that cannot be
// resolved, because its name is already bound to a different kind, is logged
// to the Manager's Logger and replaced by a no-op.
type Provider struct {
	manager *monitor.Manager
	prefix  string
}

// New returns a Provider creating monitors below prefix.
func New(m *monitor.Manager, prefix string) *Provider {
	return &Provider{manager: m, prefix: prefix}
}

func (p *Provider) name(queue, metric string) string {
	return monitor.JoinName(p.prefix, monitor.SanitizeSegment(queue), metric)
}

func (p *Provider) counter(queue, metric string) *monitor.Counter {
	if queue == "" {
		return nil
	}
	c, err := p.manager.Counter(p.name(queue, metric))
	if err != nil {
		p.manager.Logger().Errorf("gomonitor/workqueuemonitor: queue %q: %s", queue, err)
		return nil
	}
	return c
}

func (p *Provider) stopwatch(queue, metric string) *monitor.Stopwatch {
	if queue == "" {
		return nil
	}
	sw, err := p.manager.Stopwatch(p.name(queue, metric))
	if err != nil {
		p.manager.Logger().Errorf("gomonitor/workqueuemonitor: queue %q: %s", queue, err)
		return nil
	}
	return sw
}

func (p *Provider) NewDepthMetric(name string) workqueue.GaugeMetric {
	if c := p.counter(name, "depth"); c != nil {
		return c
	}
	return noopMetric{}
}

func (p *Provider) NewAddsMetric(name string) workqueue.CounterMetric {
	if c := p.counter(name, "adds"); c != nil {
		return c
	}
	return noopMetric{}
}

func (p *Provider) NewRetriesMetric(name string) workqueue.CounterMetric {
	if c := p.counter(name, "retries"); c != nil {
		return c
	}
	return noopMetric{}
}

func (p *Provider) NewLatencyMetric(name string) workqueue.HistogramMetric {
	if sw := p.stopwatch(name, "latency"); sw != nil {
		return stopwatchHistogram{sw: sw}
	}
	return noopMetric{}
}

func (p *Provider) NewWorkDurationMetric(name string) workqueue.HistogramMetric {
	if sw := p.stopwatch(name, "work_duration"); sw != nil {
		return stopwatchHistogram{sw: sw}
	}
	return noopMetric{}
}

func (p *Provider) NewUnfinishedWorkSecondsMetric(name string) workqueue.SettableGaugeMetric {
	if c := p.counter(name, "unfinished_work_us"); c != nil {
		return microsGauge{c: c}
	}
	return noopMetric{}
}

func (p *Provider) NewLongestRunningProcessorSecondsMetric(name string) workqueue.SettableGaugeMetric {
	if c := p.counter(name, "longest_running_processor_us"); c != nil {
		return microsGauge{c: c}
	}
	return noopMetric{}
}

type stopwatchHistogram struct{ sw *monitor.Stopwatch }

func (h stopwatchHistogram) Observe(v float64) {
	// assumes v is in seconds
	h.sw.AddDuration(time.Duration(v * float64(time.Second)))
}

type microsGauge struct{ c *monitor.Counter }

func (g microsGauge) Set(v float64) {
	// assumes v is in seconds - here we convert it to microseconds. see package comment why.
	g.c.Set(int64(v * 1000000))
}

type noopMetric struct{}

func (noopMetric) Inc() {}

func (noopMetric) Dec() {}

func (noopMetric) Set(float64) {}

func (noopMetric) Observe(float64) {}

var _ workqueue.MetricsProvider = (*Provider)(nil)
