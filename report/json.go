package report

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	monitor "github.com/lyft/gomonitor"
	"github.com/lyft/gomonitor/internal/zapline"
)

// A Sampler returns samples of monitors. *monitor.Manager is a Sampler.
type Sampler interface {
	Samples() []monitor.Sample
}

// A JSONReporter writes one JSON object per bound monitor and line. The
// format is as if you used a zap.NewProduction-generated logger, with the
// sample fields under a "json" namespace:
//
//	{"level":"info","ts":1640995200.000000,"logger":"gomonitor.report","msg":"sample counter","json":{"name":"jobs","type":"counter","value":"7",...}}
//
// It is not fast and does not buffer. It is safe for concurrent use.
type JSONReporter struct {
	mu     sync.Mutex
	writer io.Writer
	now    func() time.Time
}

// NewJSONReporter returns a JSONReporter writing to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w, now: time.Now}
}

// Report writes a line for every stopwatch and counter of s, in the order the
// samples are returned. Unused monitors are skipped. It returns the first
// write error.
func (r *JSONReporter) Report(s Sampler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sample := range s.Samples() {
		kv := fields(sample)
		if kv == nil {
			continue
		}
		err := zapline.Encode(r.writer, r.now(), "info", "gomonitor.report", "sample "+kv["type"], kv)
		if err != nil {
			return fmt.Errorf("report: writing %q: %w", sample.MonitorName(), err)
		}
	}
	return nil
}

func fields(sample monitor.Sample) map[string]string {
	switch s := sample.(type) {
	case monitor.StopwatchSample:
		return map[string]string{
			"name":       s.Name,
			"type":       "stopwatch",
			"count":      strconv.FormatInt(s.Count, 10),
			"active":     strconv.FormatInt(s.Active, 10),
			"max_active": strconv.FormatInt(s.MaxActive, 10),
			"total":      s.Total.String(),
			"last":       s.Last.String(),
			"min":        s.Min.String(),
			"max":        s.Max.String(),
			"mean":       time.Duration(s.Mean).String(),
			"stddev":     time.Duration(s.StandardDeviation).String(),
		}
	case monitor.CounterSample:
		return map[string]string{
			"name":          s.Name,
			"type":          "counter",
			"value":         strconv.FormatInt(s.Value, 10),
			"min":           strconv.FormatInt(s.Min, 10),
			"max":           strconv.FormatInt(s.Max, 10),
			"increment_sum": strconv.FormatInt(s.IncrementSum, 10),
			"decrement_sum": strconv.FormatInt(s.DecrementSum, 10),
		}
	}
	return nil
}
