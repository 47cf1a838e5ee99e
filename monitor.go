// Package monitor provides hierarchical, concurrency safe stopwatches and
// counters.
//
// Monitors are addressed by dot delimited names and live in a tree owned by a
// Manager. Resolving a name creates it, and any missing ancestors, on first use:
//
//	m := monitor.NewManager()
//	sw, err := m.Stopwatch("service.db.query")
//	if err != nil {
//		return err
//	}
//	split := sw.Start()
//	defer split.Stop()
//
// A name is bound to a single Kind for its lifetime. Ancestors created
// implicitly are KindUnused until they are resolved as a Stopwatch or Counter.
//
// Monitors can be disabled, either individually or for a whole subtree, with
// SetEnablement. Disabled monitors keep handing out valid Splits and accept
// Counter updates, but nothing is accounted.
//
// Samples are immutable snapshots of a monitor's state and are safe to pass
// around after the Manager has been cleared.
package monitor

import (
	"sort"
	"strconv"
	"sync/atomic"
)

// Kind is the type a monitor name is bound to.
type Kind uint32

const (
	// KindUnused is a name that was created as an ancestor, or resolved
	// without a type, and has not been bound yet.
	KindUnused Kind = iota
	KindStopwatch
	KindCounter
)

func (k Kind) String() string {
	switch k {
	case KindUnused:
		return "Unused"
	case KindStopwatch:
		return "Stopwatch"
	case KindCounter:
		return "Counter"
	default:
		return "Kind(" + strconv.FormatUint(uint64(k), 10) + ")"
	}
}

// Enablement is the explicit enabled state of a Monitor.
type Enablement int32

const (
	// Inherit makes the monitor follow its nearest ancestor with an explicit
	// Enablement.
	Inherit Enablement = iota
	Enabled
	Disabled
)

func (e Enablement) String() string {
	switch e {
	case Inherit:
		return "Inherit"
	case Enabled:
		return "Enabled"
	case Disabled:
		return "Disabled"
	default:
		return "Enablement(" + strconv.FormatInt(int64(e), 10) + ")"
	}
}

// A Monitor is a node of a Manager's tree. The zero value is not usable,
// Monitors are only obtained from a Manager.
type Monitor struct {
	name   string
	local  string
	parent *Monitor
	tree   *tree

	// guarded by tree.mu
	children map[string]*Monitor

	enablement atomic.Int32
	kind       atomic.Uint32

	// set once, before kind is stored
	stopwatch *Stopwatch
	counter   *Counter
}

func newMonitor(t *tree, parent *Monitor, name, local string) *Monitor {
	return &Monitor{
		name:   name,
		local:  local,
		parent: parent,
		tree:   t,
	}
}

// Name returns the full hierarchical name, "" for the root.
func (n *Monitor) Name() string { return n.name }

// LocalName returns the last segment of the name.
func (n *Monitor) LocalName() string { return n.local }

// Parent returns the parent monitor, or nil for the root.
func (n *Monitor) Parent() *Monitor { return n.parent }

// Kind returns the Kind the monitor is currently bound to.
func (n *Monitor) Kind() Kind { return Kind(n.kind.Load()) }

// Children returns the direct children sorted by local name.
func (n *Monitor) Children() []*Monitor {
	n.tree.mu.RLock()
	a := n.childrenLocked()
	n.tree.mu.RUnlock()
	return a
}

func (n *Monitor) childrenLocked() []*Monitor {
	if len(n.children) == 0 {
		return nil
	}
	a := make([]*Monitor, 0, len(n.children))
	for _, c := range n.children {
		a = append(a, c)
	}
	sort.Slice(a, func(i, j int) bool { return a[i].local < a[j].local })
	return a
}

// Enablement returns the explicit state set on this monitor.
func (n *Monitor) Enablement() Enablement { return Enablement(n.enablement.Load()) }

// SetEnablement sets the explicit state. Setting Inherit on the root makes it
// enabled.
func (n *Monitor) SetEnablement(e Enablement) {
	n.enablement.Store(int32(e))
}

// IsEnabled reports the effective state: the nearest explicit Enablement of
// this monitor or its ancestors, enabled if there is none.
func (n *Monitor) IsEnabled() bool {
	for curr := n; curr != nil; curr = curr.parent {
		switch Enablement(curr.enablement.Load()) {
		case Enabled:
			return true
		case Disabled:
			return false
		}
	}
	return true
}

// Stopwatch returns the stopwatch state if the monitor is bound to
// KindStopwatch.
func (n *Monitor) Stopwatch() (*Stopwatch, bool) {
	if n.Kind() != KindStopwatch {
		return nil, false
	}
	return n.stopwatch, true
}

// Counter returns the counter state if the monitor is bound to KindCounter.
func (n *Monitor) Counter() (*Counter, bool) {
	if n.Kind() != KindCounter {
		return nil, false
	}
	return n.counter, true
}

// Sample returns a snapshot of the monitor. The concrete type is
// StopwatchSample, CounterSample or UnusedSample depending on Kind.
func (n *Monitor) Sample() Sample {
	switch n.Kind() {
	case KindStopwatch:
		return n.stopwatch.Sample()
	case KindCounter:
		return n.counter.Sample()
	default:
		return UnusedSample{Name: n.name, Taken: n.tree.now()}
	}
}

func (n *Monitor) String() string {
	return "Monitor{" + strconv.Quote(n.name) + " " + n.Kind().String() + "}"
}

// bind binds an unused monitor to k. Binding to the current kind, or to
// KindUnused, is a no-op.
func (n *Monitor) bind(k Kind) error {
	if k == KindUnused {
		return nil
	}
	curr := n.Kind()
	if curr == k {
		return nil
	}
	if curr != KindUnused {
		return &KindMismatchError{Name: n.name, Bound: curr, Requested: k}
	}

	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	if curr = n.Kind(); curr == k {
		return nil
	} else if curr != KindUnused {
		return &KindMismatchError{Name: n.name, Bound: curr, Requested: k}
	}
	switch k {
	case KindStopwatch:
		n.stopwatch = newStopwatch(n)
	case KindCounter:
		n.counter = newCounter(n)
	default:
		return &KindMismatchError{Name: n.name, Bound: curr, Requested: k}
	}
	n.kind.Store(uint32(k))
	return nil
}

// Sample is an immutable snapshot of a monitor.
type Sample interface {
	// MonitorName returns the name of the sampled monitor.
	MonitorName() string
	// Kind returns the Kind of the sampled monitor.
	Kind() Kind
	String() string
}
