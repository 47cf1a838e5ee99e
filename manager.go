package monitor

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// An Option configures a Manager.
type Option interface {
	apply(*env)
}

// optionFunc wraps a func so it satisfies the Option interface.
type optionFunc func(*env)

func (f optionFunc) apply(e *env) {
	f(e)
}

// WithLogger configures the Manager to report contract violations, such as
// stopping a Split twice, to log. Otherwise a zap-like JSON logger writing to
// os.Stderr is used.
func WithLogger(log Logger) Option {
	return optionFunc(func(e *env) {
		e.log = log
	})
}

// WithNow sets the clock used for split timing and sample instants. The
// returned times should carry a monotonic reading, as time.Now does.
func WithNow(now func() time.Time) Option {
	return optionFunc(func(e *env) {
		e.now = now
	})
}

// WithSettings overrides the default Settings.
func WithSettings(s Settings) Option {
	return optionFunc(func(e *env) {
		e.conf = s
	})
}

// env is shared by every tree generation of a Manager.
type env struct {
	now  func() time.Time
	log  Logger
	conf Settings
}

type tree struct {
	*env

	mu    sync.RWMutex
	root  *Monitor
	index map[string]*Monitor // full name -> monitor, guarded by mu
}

func newTree(e *env) *tree {
	t := &tree{env: e, index: make(map[string]*Monitor)}
	t.root = newMonitor(t, nil, "", "")
	if e.conf.Enabled {
		t.root.SetEnablement(Enabled)
	} else {
		t.root.SetEnablement(Disabled)
	}
	t.index[""] = t.root
	return t
}

// lookup returns the monitor for a validated name, creating it and any
// missing ancestors as KindUnused.
func (t *tree) lookup(name string) *Monitor {
	t.mu.RLock()
	n := t.index[name]
	t.mu.RUnlock()
	if n != nil {
		return n
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if n = t.index[name]; n != nil {
		return n
	}
	curr := t.root
	full := ""
	for _, seg := range splitName(name) {
		full = JoinName(full, seg)
		child := curr.children[seg]
		if child == nil {
			child = newMonitor(t, curr, full, seg)
			if curr.children == nil {
				curr.children = make(map[string]*Monitor)
			}
			curr.children[seg] = child
			t.index[full] = child
		}
		curr = child
	}
	return curr
}

func (t *tree) find(name string) *Monitor {
	t.mu.RLock()
	n := t.index[name]
	t.mu.RUnlock()
	return n
}

// walk visits the subtree rooted at n depth-first, parents before children
// and siblings ordered by local name. The caller must hold mu.
func walk(n *Monitor, fn func(*Monitor)) {
	fn(n)
	for _, c := range n.childrenLocked() {
		walk(c, fn)
	}
}

// A Manager owns a tree of monitors. It is safe for concurrent use.
//
// There is normally one Manager per process, returned by Default, but
// independent Managers can be created with NewManager.
type Manager struct {
	env  *env
	tree atomic.Pointer[tree]
}

// NewManager returns a Manager with an empty tree. Unless overridden with
// WithSettings the default Settings are used, the environment is not read.
func NewManager(opts ...Option) *Manager {
	e := &env{
		now: time.Now,
		// default logger mimics a zap production logger on stderr
		log:  &jsonLogger{writer: os.Stderr, now: time.Now},
		conf: DefaultSettings(),
	}
	for _, opt := range opts {
		opt.apply(e)
	}
	m := &Manager{env: e}
	m.tree.Store(newTree(e))
	return m
}

var (
	defaultManager     *Manager
	defaultManagerOnce sync.Once
)

// Default returns the process wide Manager, created on first use with the
// Settings returned by GetSettings. It panics if the environment holds
// malformed settings.
func Default() *Manager {
	defaultManagerOnce.Do(func() {
		settings, err := GetSettings()
		if err != nil {
			panic(err)
		}
		defaultManager = NewManager(WithSettings(settings))
	})
	return defaultManager
}

// Resolve returns the monitor called name, creating it and its ancestors if
// needed. An unused monitor is bound to kind; if it is already bound to a
// different kind an error matching ErrKindMismatch is returned. Resolving
// with KindUnused never binds.
//
// A malformed name returns an error matching ErrNameSyntax and creates
// nothing.
func (m *Manager) Resolve(name string, kind Kind) (*Monitor, error) {
	if kind > KindCounter {
		return nil, fmt.Errorf("gomonitor: resolving %q: invalid kind: %s", name, kind)
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	n := m.tree.Load().lookup(name)
	if err := n.bind(kind); err != nil {
		return nil, err
	}
	return n, nil
}

// Monitor resolves name without binding it to a kind.
func (m *Manager) Monitor(name string) (*Monitor, error) {
	return m.Resolve(name, KindUnused)
}

// Stopwatch resolves name as a Stopwatch.
func (m *Manager) Stopwatch(name string) (*Stopwatch, error) {
	n, err := m.Resolve(name, KindStopwatch)
	if err != nil {
		return nil, err
	}
	return n.stopwatch, nil
}

// Counter resolves name as a Counter.
func (m *Manager) Counter(name string) (*Counter, error) {
	n, err := m.Resolve(name, KindCounter)
	if err != nil {
		return nil, err
	}
	return n.counter, nil
}

// MustStopwatch is like Stopwatch but panics if name cannot be resolved.
func (m *Manager) MustStopwatch(name string) *Stopwatch {
	s, err := m.Stopwatch(name)
	if err != nil {
		panic(err)
	}
	return s
}

// MustCounter is like Counter but panics if name cannot be resolved.
func (m *Manager) MustCounter(name string) *Counter {
	c, err := m.Counter(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Logger returns the Logger the Manager reports contract violations to.
func (m *Manager) Logger() Logger {
	return m.env.log
}

// Find returns the monitor called name if it exists. It never creates
// monitors.
func (m *Manager) Find(name string) (*Monitor, bool) {
	n := m.tree.Load().find(name)
	return n, n != nil
}

// Root returns the root monitor of the current tree.
func (m *Manager) Root() *Monitor {
	return m.tree.Load().root
}

// Clear discards every monitor and starts over with an empty tree.
//
// Monitors, Splits and Samples obtained before Clear keep working against the
// discarded tree, nothing done with them is visible in the new one.
func (m *Manager) Clear() {
	m.tree.Store(newTree(m.env))
}

// Enumerate returns every monitor of the current tree depth-first, starting
// with the root, parents before their children and siblings ordered by
// local name.
func (m *Manager) Enumerate() []*Monitor {
	t := m.tree.Load()
	t.mu.RLock()
	defer t.mu.RUnlock()

	a := make([]*Monitor, 0, len(t.index))
	walk(t.root, func(n *Monitor) {
		a = append(a, n)
	})
	return a
}

// Samples returns a sample of every monitor in Enumerate order.
func (m *Manager) Samples() []Sample {
	nodes := m.Enumerate()
	a := make([]Sample, len(nodes))
	for i, n := range nodes {
		a[i] = n.Sample()
	}
	return a
}
