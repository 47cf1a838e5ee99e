package monitor

import (
	"runtime"
)

// RuntimeStats sets counters from common Go runtime stats like memory
// allocated, total mallocs, total frees, etc. It does nothing on its own,
// call GenerateStats whenever fresh values are wanted.
type RuntimeStats struct {
	alloc      *Counter // bytes allocated and not yet freed
	totalAlloc *Counter // bytes allocated (even if freed)
	sys        *Counter // bytes obtained from system (sum of XxxSys below)
	lookups    *Counter // number of pointer lookups
	mallocs    *Counter // number of mallocs
	frees      *Counter // number of frees

	// Main allocation heap statistics
	heapAlloc    *Counter // bytes allocated and not yet freed (same as Alloc above)
	heapSys      *Counter // bytes obtained from system
	heapIdle     *Counter // bytes in idle spans
	heapInuse    *Counter // bytes in non-idle span
	heapReleased *Counter // bytes released to the OS
	heapObjects  *Counter // total number of allocated objects

	// Garbage collector statistics.
	nextGC       *Counter // next collection will happen when HeapAlloc ≥ this amount
	lastGC       *Counter // end time of last collection (nanoseconds since 1970)
	pauseTotalNs *Counter
	numGC        *Counter
	gcCPUPercent *Counter

	numGoroutine *Counter
}

// NewRuntimeStats resolves the runtime counters under prefix.
func NewRuntimeStats(m *Manager, prefix string) (*RuntimeStats, error) {
	var err error
	counter := func(name string) *Counter {
		if err != nil {
			return nil
		}
		var c *Counter
		c, err = m.Counter(JoinName(prefix, name))
		return c
	}
	r := &RuntimeStats{
		alloc:      counter("alloc"),
		totalAlloc: counter("totalAlloc"),
		sys:        counter("sys"),
		lookups:    counter("lookups"),
		mallocs:    counter("mallocs"),
		frees:      counter("frees"),

		heapAlloc:    counter("heapAlloc"),
		heapSys:      counter("heapSys"),
		heapIdle:     counter("heapIdle"),
		heapInuse:    counter("heapInuse"),
		heapReleased: counter("heapReleased"),
		heapObjects:  counter("heapObjects"),

		nextGC:       counter("nextGC"),
		lastGC:       counter("lastGC"),
		pauseTotalNs: counter("pauseTotalNs"),
		numGC:        counter("numGC"),
		gcCPUPercent: counter("gcCPUPercent"),

		numGoroutine: counter("numGoroutine"),
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GenerateStats reads the runtime's memory stats and sets the counters.
func (r *RuntimeStats) GenerateStats() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	r.alloc.Set(int64(memStats.Alloc))
	r.totalAlloc.Set(int64(memStats.TotalAlloc))
	r.sys.Set(int64(memStats.Sys))
	r.lookups.Set(int64(memStats.Lookups))
	r.mallocs.Set(int64(memStats.Mallocs))
	r.frees.Set(int64(memStats.Frees))

	r.heapAlloc.Set(int64(memStats.HeapAlloc))
	r.heapSys.Set(int64(memStats.HeapSys))
	r.heapIdle.Set(int64(memStats.HeapIdle))
	r.heapInuse.Set(int64(memStats.HeapInuse))
	r.heapReleased.Set(int64(memStats.HeapReleased))
	r.heapObjects.Set(int64(memStats.HeapObjects))

	r.nextGC.Set(int64(memStats.NextGC))
	r.lastGC.Set(int64(memStats.LastGC))
	r.pauseTotalNs.Set(int64(memStats.PauseTotalNs))
	r.numGC.Set(int64(memStats.NumGC))
	r.gcCPUPercent.Set(int64(memStats.GCCPUFraction * 100))

	r.numGoroutine.Set(int64(runtime.NumGoroutine()))
}
