package libxml

import (
	"sync"

	"github.com/obinnaokechukwu/xmlgo/internal/handles"
)

// recordList accumulates records for one collection scope.
type recordList struct {
	mu      sync.Mutex
	records []Record
}

func (l *recordList) add(r Record) {
	l.mu.Lock()
	l.records = append(l.records, r)
	l.mu.Unlock()
}

// Collector gathers the structured errors emitted during one native call.
// Its token is the user-data value the error handler receives; the records
// it collects belong to that call alone.
type Collector struct {
	token uintptr
	list  *recordList

	once    sync.Once
	records []Record
}

// NewCollector allocates a collection scope. Close must be called once the
// native call has returned.
func NewCollector() *Collector {
	l := &recordList{}
	return &Collector{token: handles.Allocate(l), list: l}
}

// Token returns the user-data value to register with the native error hook.
func (c *Collector) Token() uintptr { return c.token }

// Records returns a copy of the records collected so far.
func (c *Collector) Records() []Record {
	c.list.mu.Lock()
	defer c.list.mu.Unlock()
	if c.list.records == nil {
		return append([]Record(nil), c.records...)
	}
	return append([]Record(nil), c.list.records...)
}

// Close frees the token and returns the records in emission order. Later
// calls return the same records.
func (c *Collector) Close() []Record {
	c.once.Do(func() {
		handles.Free(c.token)
		c.list.mu.Lock()
		c.records = c.list.records
		c.list.records = nil
		c.list.mu.Unlock()
	})
	return c.records
}

// Err closes the collector and, if failed, returns the error for op.
// Records gathered during a successful call are discarded.
func (c *Collector) Err(op string, failed bool) error {
	records := c.Close()
	if !failed {
		return nil
	}
	return failure(op, records)
}

// Collect runs call inside a fresh collection scope. call receives the token
// to pass as the error handler's user data and reports whether the native
// operation succeeded. On failure the collected records are raised as a
// *StructuredError, or an *OpError when nothing was emitted.
func Collect(op string, call func(token uintptr) bool) error {
	c := NewCollector()
	defer c.Close()
	ok := call(c.Token())
	return c.Err(op, !ok)
}

// CollectContext is Collect for calls that need a native working context.
// alloc creates the context before the scope opens; release frees it only
// after the records have been read and the token freed. A zero context from
// alloc yields ErrOutOfMemory.
func CollectContext(op string, alloc func() uintptr, release func(uintptr), call func(ctxt, token uintptr) bool) error {
	ctxt := alloc()
	if ctxt == 0 {
		return ErrOutOfMemory
	}
	defer release(ctxt)
	return Collect(op, func(token uintptr) bool {
		return call(ctxt, token)
	})
}

// appendRecord adds r to the scope identified by token. Unknown tokens are
// ignored; a late diagnostic must not crash the process.
func appendRecord(token uintptr, r Record) {
	if l, ok := handles.Lookup(token).(*recordList); ok {
		l.add(r)
	}
}
