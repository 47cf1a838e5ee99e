package monitor

import (
	"sync/atomic"
	"time"
)

// A Split is a single running measurement of a Stopwatch, returned by
// Stopwatch.Start. It is owned by the caller that started it and must be
// stopped exactly once; a Split that is never stopped stays in the
// stopwatch's Active count forever.
type Split struct {
	stopwatch *Stopwatch
	start     time.Time
	counted   bool

	closed   atomic.Bool
	duration atomic.Int64
}

// Stop stops the split, commits its duration to the stopwatch and returns it.
//
// Stopping a split more than once is a programming error: the extra calls
// record nothing, log a warning and return the duration of the first call.
// If the calls race, the duration returned by the losing call is unspecified,
// it may be zero.
func (sp *Split) Stop() time.Duration {
	d, _ := sp.stop()
	return d
}

// Close is like Stop but returns ErrDoubleClose if the split was already
// stopped. It implements io.Closer.
func (sp *Split) Close() error {
	_, err := sp.stop()
	return err
}

func (sp *Split) stop() (time.Duration, error) {
	sw := sp.stopwatch
	if !sp.closed.CompareAndSwap(false, true) {
		if sw.mon.tree.conf.StrictSplits {
			panic(ErrDoubleClose)
		}
		sw.mon.tree.log.Warnf("gomonitor: split of stopwatch %q stopped more than once", sw.mon.name)
		return time.Duration(sp.duration.Load()), ErrDoubleClose
	}

	now := sw.mon.tree.now()
	d := now.Sub(sp.start)
	if d < 0 {
		d = 0
	}
	sp.duration.Store(int64(d))
	if sp.counted {
		sw.commit(d, now)
	}
	return d, nil
}

// Running reports whether the split has not been stopped yet.
func (sp *Split) Running() bool { return !sp.closed.Load() }

// Counted reports whether the split was started on an enabled stopwatch and
// so will be committed when stopped.
func (sp *Split) Counted() bool { return sp.counted }

// StartTime returns the instant the split was started.
func (sp *Split) StartTime() time.Time { return sp.start }

// Elapsed returns the time since the split started while it runs, and the
// committed duration once stopped.
func (sp *Split) Elapsed() time.Duration {
	if sp.closed.Load() {
		return time.Duration(sp.duration.Load())
	}
	return sp.stopwatch.mon.tree.now().Sub(sp.start)
}

// Stopwatch returns the stopwatch that started the split.
func (sp *Split) Stopwatch() *Stopwatch { return sp.stopwatch }
