// Package diagnostics records outstanding native-backed wrapper objects so
// leaks can be found in tests and long-running services.
//
// Tracking is off by default; the installed tracker is then a no-op that
// allocates nothing. Enable swaps in an active tracker. Every switch discards
// the previous tracker's state: the report is a best-effort leak signal, not
// an audit log.
//
// Objects that were explicitly released (Close/Dispose) leave the report.
// Objects the garbage collector reclaimed without an explicit release stay in
// the report and are counted as GarbageCollected; those are the leaks.
package diagnostics

import (
	"sync/atomic"
)

// Options configures the active tracker.
type Options struct {
	// CallerDetail records the allocation call path of every instance.
	CallerDetail bool `toml:"caller_detail" json:"caller_detail"`

	// CallerStats aggregates allocation call paths into a frequency table
	// per class.
	CallerStats bool `toml:"caller_stats" json:"caller_stats"`
}

// Object identifies a tracked wrapper without keeping it alive.
type Object struct {
	// Key is a comparable identity for the object that does not keep it
	// reachable, typically a weak.Pointer boxed in an interface.
	Key any

	// Resolve returns the object, or nil once it has been collected.
	Resolve func() any
}

// Tracker receives allocation and release events from lifecycle registries.
type Tracker interface {
	// Allocate records a newly constructed wrapper of the named class.
	Allocate(obj Object, class string)

	// Deallocate records an explicit release. Objects that were constructed
	// before tracking was enabled are ignored.
	Deallocate(obj Object)

	// Report summarizes the objects still known to the tracker.
	Report() Report
}

type holder struct {
	tracker Tracker
}

var current atomic.Pointer[holder]

func init() {
	current.Store(&holder{tracker: nopTracker{}})
}

// Enable installs a fresh active tracker, discarding any previous state.
func Enable(opts Options) {
	current.Store(&holder{tracker: newActiveTracker(opts)})
}

// Disable installs the no-op tracker, discarding any previous state.
func Disable() {
	current.Store(&holder{tracker: nopTracker{}})
}

// Enabled reports whether an active tracker is installed.
func Enabled() bool {
	_, ok := current.Load().tracker.(*activeTracker)
	return ok
}

// Current returns the installed tracker.
func Current() Tracker {
	return current.Load().tracker
}

// Snapshot returns the installed tracker's report. It is empty when tracking
// is disabled.
func Snapshot() Report {
	return Current().Report()
}

type nopTracker struct{}

func (nopTracker) Allocate(Object, string) {}
func (nopTracker) Deallocate(Object)       {}
func (nopTracker) Report() Report          { return Report{} }
