package monitor

import (
	"math"
	"sync/atomic"
	"time"
)

// An extreme is an immutable value and the instant it was observed. It is
// swapped in as a whole so the pair is never torn.
type extreme struct {
	value int64
	at    time.Time
}

// loadExtreme returns the value and instant, zeros if nothing was observed.
func loadExtreme(p *atomic.Pointer[extreme]) (int64, time.Time) {
	if e := p.Load(); e != nil {
		return e.value, e.at
	}
	return 0, time.Time{}
}

// storeMax replaces the stored extreme with v if nothing is stored or v is
// strictly greater.
func storeMax(p *atomic.Pointer[extreme], v int64, at time.Time) {
	var next *extreme
	for {
		curr := p.Load()
		if curr != nil && v <= curr.value {
			return
		}
		if next == nil {
			next = &extreme{value: v, at: at}
		}
		if p.CompareAndSwap(curr, next) {
			return
		}
	}
}

// storeMin replaces the stored extreme with v if nothing is stored or v is
// strictly less.
func storeMin(p *atomic.Pointer[extreme], v int64, at time.Time) {
	var next *extreme
	for {
		curr := p.Load()
		if curr != nil && v >= curr.value {
			return
		}
		if next == nil {
			next = &extreme{value: v, at: at}
		}
		if p.CompareAndSwap(curr, next) {
			return
		}
	}
}

func atomicAddFloat64(dest *atomic.Uint64, delta float64) {
	for {
		curr := dest.Load()
		next := math.Float64bits(math.Float64frombits(curr) + delta)
		if dest.CompareAndSwap(curr, next) {
			return
		}
	}
}

func atomicLoadFloat64(src *atomic.Uint64) float64 {
	return math.Float64frombits(src.Load())
}

// usage records the first and last instants a monitor was touched, as unix
// nanoseconds. Zero means never.
type usage struct {
	first atomic.Int64
	last  atomic.Int64
}

func (u *usage) touch(at time.Time) {
	ns := at.UnixNano()
	for {
		curr := u.first.Load()
		if (curr != 0 && curr <= ns) || u.first.CompareAndSwap(curr, ns) {
			break
		}
	}
	for {
		curr := u.last.Load()
		if curr >= ns || u.last.CompareAndSwap(curr, ns) {
			return
		}
	}
}

func unixNanoTime(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

func (u *usage) load() (first, last time.Time) {
	return unixNanoTime(u.first.Load()), unixNanoTime(u.last.Load())
}
