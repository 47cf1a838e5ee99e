// Package promcollector exposes the monitors of a gomonitor Manager as
// Prometheus metrics.
//
// Every scrape samples the whole tree, stopwatches and counters become one
// series per metric labelled with the monitor name. Unused monitors are not
// exported. Values restart from zero after Manager.Clear, which Prometheus
// treats as a counter reset.
package promcollector

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	monitor "github.com/lyft/gomonitor"
)

// MonitorLabel is the label carrying the monitor name.
const MonitorLabel = "monitor"

// A Sampler returns samples of monitors. *monitor.Manager is a Sampler.
type Sampler interface {
	Samples() []monitor.Sample
}

// Collector implements prometheus.Collector.
type Collector struct {
	sampler Sampler

	swSeconds *prometheus.Desc
	swSplits  *prometheus.Desc
	swActive  *prometheus.Desc
	swMax     *prometheus.Desc
	swMin     *prometheus.Desc

	counterValue *prometheus.Desc
	counterMax   *prometheus.Desc
	counterMin   *prometheus.Desc
}

// New returns a Collector for s with metric names prefixed by namespace.
func New(s Sampler, namespace string) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, []string{MonitorLabel}, nil)
	}
	return &Collector{
		sampler: s,

		swSeconds: desc("stopwatch_seconds_total", "Sum of the durations of all committed splits."),
		swSplits:  desc("stopwatch_splits_total", "Number of committed splits."),
		swActive:  desc("stopwatch_active", "Number of running splits."),
		swMax:     desc("stopwatch_max_seconds", "Longest committed split."),
		swMin:     desc("stopwatch_min_seconds", "Shortest committed split."),

		counterValue: desc("counter_value", "Current value of a counter."),
		counterMax:   desc("counter_max", "Largest value a counter held."),
		counterMin:   desc("counter_min", "Smallest value a counter held."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.swSeconds
	ch <- c.swSplits
	ch <- c.swActive
	ch <- c.swMax
	ch <- c.swMin
	ch <- c.counterValue
	ch <- c.counterMax
	ch <- c.counterMin
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, sample := range c.sampler.Samples() {
		switch s := sample.(type) {
		case monitor.StopwatchSample:
			ch <- prometheus.MustNewConstMetric(c.swSeconds, prometheus.CounterValue, s.Total.Seconds(), s.Name)
			ch <- prometheus.MustNewConstMetric(c.swSplits, prometheus.CounterValue, float64(s.Count), s.Name)
			ch <- prometheus.MustNewConstMetric(c.swActive, prometheus.GaugeValue, float64(s.Active), s.Name)
			ch <- prometheus.MustNewConstMetric(c.swMax, prometheus.GaugeValue, s.Max.Seconds(), s.Name)
			ch <- prometheus.MustNewConstMetric(c.swMin, prometheus.GaugeValue, s.Min.Seconds(), s.Name)
		case monitor.CounterSample:
			ch <- prometheus.MustNewConstMetric(c.counterValue, prometheus.GaugeValue, float64(s.Value), s.Name)
			ch <- prometheus.MustNewConstMetric(c.counterMax, prometheus.GaugeValue, float64(s.Max), s.Name)
			ch <- prometheus.MustNewConstMetric(c.counterMin, prometheus.GaugeValue, float64(s.Min), s.Name)
		}
	}
}

// Handler returns an http.Handler serving the metrics of c, and only those,
// in the Prometheus exposition format.
func Handler(c *Collector) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return nil, err
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

var _ prometheus.Collector = (*Collector)(nil)
