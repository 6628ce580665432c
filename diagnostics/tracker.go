package diagnostics

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
)

const maxCallerDepth = 32

// Frames matching these prefixes are dropped from captured call paths so the
// first frame is the code that asked for the wrapper.
var internalPrefixes = []string{
	"github.com/obinnaokechukwu/xmlgo/diagnostics.",
	"github.com/obinnaokechukwu/xmlgo/lifecycle.(*Registry",
}

type entry struct {
	obj    Object
	class  string
	caller string
}

type activeTracker struct {
	opts Options

	mu      sync.Mutex
	next    uint64
	entries map[uint64]*entry
	tickets map[any]uint64
	totals  map[string]int
}

func newActiveTracker(opts Options) *activeTracker {
	return &activeTracker{
		opts:    opts,
		entries: make(map[uint64]*entry),
		tickets: make(map[any]uint64),
		totals:  make(map[string]int),
	}
}

func (t *activeTracker) Allocate(obj Object, class string) {
	var caller string
	if t.opts.CallerDetail || t.opts.CallerStats {
		caller = captureCaller()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.next++
	t.entries[t.next] = &entry{obj: obj, class: class, caller: caller}
	t.tickets[obj.Key] = t.next
	t.totals[class]++
}

func (t *activeTracker) Deallocate(obj Object) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ticket, ok := t.tickets[obj.Key]
	if !ok {
		return
	}
	delete(t.tickets, obj.Key)
	delete(t.entries, ticket)
}

func (t *activeTracker) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	report := make(Report, len(t.totals))
	for class, total := range t.totals {
		report[class] = &ClassReport{TotalInstances: total}
	}

	for _, e := range t.entries {
		cr := report[e.class]
		if t.opts.CallerStats && e.caller != "" {
			if cr.CallerStats == nil {
				cr.CallerStats = make(map[string]int)
			}
			cr.CallerStats[e.caller]++
		}

		v := e.obj.Resolve()
		if v == nil {
			cr.GarbageCollected++
			continue
		}
		inst := Instance{Object: v, Type: fmt.Sprintf("%T", v)}
		if t.opts.CallerDetail {
			inst.Caller = e.caller
		}
		cr.Instances = append(cr.Instances, inst)
	}
	return report
}

func captureCaller() string {
	pcs := make([]uintptr, maxCallerDepth)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		f, more := frames.Next()
		if !isInternalFrame(f.Function) {
			fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		}
		if !more {
			break
		}
	}
	return b.String()
}

func isInternalFrame(fn string) bool {
	for _, p := range internalPrefixes {
		if strings.HasPrefix(fn, p) {
			return true
		}
	}
	return false
}
