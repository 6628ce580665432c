package lifecycle

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/xmlgo/diagnostics"
)

type resource struct {
	Object
	label string
}

type other struct {
	Object
}

// releaseLog records every release call per handle.
type releaseLog struct {
	mu    sync.Mutex
	calls map[Handle]int
}

func newReleaseLog() *releaseLog {
	return &releaseLog{calls: make(map[Handle]int)}
}

func (l *releaseLog) release(h Handle) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls[h]++
}

func (l *releaseLog) count(h Handle) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[h]
}

func (l *releaseLog) total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.calls {
		n += c
	}
	return n
}

func (l *releaseLog) maxPerHandle() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := 0
	for _, c := range l.calls {
		m = max(m, c)
	}
	return m
}

func newResource(label string) func() *resource {
	return func() *resource { return &resource{label: label} }
}

func collect() {
	runtime.GC()
	runtime.GC()
}

func TestGetReturnsSameWrapper(t *testing.T) {
	log := newReleaseLog()
	reg := NewRegistry[resource]("resource", log.release)

	a := reg.Get(0x1000, newResource("a"))
	b := reg.Get(0x1000, newResource("b"))
	c := reg.Get(0x2000, newResource("c"))

	require.NotNil(t, a)
	assert.Same(t, a, b, "same handle must map to the same wrapper")
	assert.Equal(t, "a", b.label, "second build must not run")
	assert.NotSame(t, a, c)
	assert.Equal(t, Handle(0x1000), a.Handle())
	assert.Equal(t, "resource", a.Class())

	reg.Dispose(a)
	reg.Dispose(c)
}

func TestSameHandleDifferentClass(t *testing.T) {
	log := newReleaseLog()
	resources := NewRegistry[resource]("resource", log.release)
	others := NewRegistry[other]("other", log.release)

	r := resources.Get(0x3000, newResource("r"))
	o := others.Get(0x3000, func() *other { return &other{} })

	require.NotNil(t, r)
	require.NotNil(t, o)
	assert.NotEqual(t, r.Class(), o.Class())

	resources.Dispose(r)
	others.Dispose(o)
	assert.Equal(t, 2, log.count(0x3000))
}

func TestGetZeroHandle(t *testing.T) {
	reg := NewRegistry[resource]("resource", newReleaseLog().release)
	assert.Nil(t, reg.Get(0, newResource("x")))

	_, ok := reg.Peek(0)
	assert.False(t, ok)
}

func TestPeekDoesNotConstruct(t *testing.T) {
	log := newReleaseLog()
	reg := NewRegistry[resource]("resource", log.release)

	_, ok := reg.Peek(0x4000)
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())

	r := reg.Get(0x4000, newResource("r"))
	got, ok := reg.Peek(0x4000)
	require.True(t, ok)
	assert.Same(t, r, got)

	reg.Dispose(r)
	_, ok = reg.Peek(0x4000)
	assert.False(t, ok)
}

func TestDisposeIsIdempotent(t *testing.T) {
	log := newReleaseLog()
	reg := NewRegistry[resource]("resource", log.release)

	r := reg.Get(0x5000, newResource("r"))
	reg.Dispose(r)
	reg.Dispose(r)
	reg.Dispose(nil)

	assert.Equal(t, 1, log.count(0x5000))
	assert.True(t, r.Disposed())
	assert.Equal(t, Handle(0), r.Handle())
	assert.Equal(t, 0, reg.Len())
}

func TestDisposedHandleGetsNewWrapper(t *testing.T) {
	reg := NewRegistry[resource]("resource", newReleaseLog().release)

	first := reg.Get(0x6000, newResource("first"))
	reg.Dispose(first)
	second := reg.Get(0x6000, newResource("second"))

	assert.NotSame(t, first, second)
	assert.Equal(t, "second", second.label)
	reg.Dispose(second)
}

// allocate creates n wrappers and disposes the first m. Only handles escape,
// so the remaining wrappers are unreachable once it returns.
//
//go:noinline
func allocate(reg *Registry[resource, *resource], base Handle, n, m int) []Handle {
	hs := make([]Handle, n)
	for i := 0; i < n; i++ {
		hs[i] = base + Handle(i)*16
		r := reg.Get(hs[i], newResource("leak"))
		if i < m {
			reg.Dispose(r)
		}
	}
	return hs
}

func TestFinalizationSafetyNet(t *testing.T) {
	const n, m = 10, 4

	log := newReleaseLog()
	reg := NewRegistry[resource]("resource", log.release)

	hs := allocate(reg, 0x10000, n, m)
	require.Equal(t, m, log.total(), "only explicit disposals before collection")

	require.Eventually(t, func() bool {
		collect()
		return log.total() == n
	}, 5*time.Second, 10*time.Millisecond)

	for _, h := range hs {
		assert.Equal(t, 1, log.count(h), "handle %#x", h)
	}
	assert.Equal(t, 1, log.maxPerHandle())
	assert.Equal(t, 0, reg.Len())
}

func TestConditionalRelease(t *testing.T) {
	log := newReleaseLog()
	var mu sync.Mutex
	owners := map[Handle]bool{0x7000: true}
	owned := func(h Handle) bool {
		mu.Lock()
		defer mu.Unlock()
		return owners[h]
	}
	reg := NewRegistry[resource]("subset", Conditional(owned, log.release))

	sub := reg.Get(0x7000, newResource("subset"))
	reg.Dispose(sub)
	assert.Equal(t, 0, log.count(0x7000), "owned handle must not be freed")
	assert.True(t, sub.Disposed(), "bookkeeping still completes")
	assert.Equal(t, 0, reg.Len())

	mu.Lock()
	owners[0x7000] = false
	mu.Unlock()

	again := reg.Get(0x7000, newResource("detached"))
	reg.Dispose(again)
	assert.Equal(t, 1, log.count(0x7000))
}

//go:noinline
func allocateTracked(reg *Registry[resource, *resource]) *resource {
	kept := reg.Get(0x8000, newResource("kept"))
	disposed := reg.Get(0x8010, newResource("disposed"))
	reg.Get(0x8020, newResource("dropped"))
	reg.Dispose(disposed)
	return kept
}

func TestDiagnosticsAccounting(t *testing.T) {
	log := newReleaseLog()
	reg := NewRegistry[resource]("tracked", log.release)

	early := reg.Get(0x8100, newResource("early"))

	diagnostics.Enable(diagnostics.Options{CallerDetail: true})
	t.Cleanup(diagnostics.Disable)

	reg.Dispose(early)
	kept := allocateTracked(reg)

	require.Eventually(t, func() bool {
		collect()
		cr := diagnostics.Snapshot()["tracked"]
		return cr != nil && cr.GarbageCollected == 1
	}, 5*time.Second, 10*time.Millisecond)

	cr := diagnostics.Snapshot()["tracked"]
	assert.Equal(t, 3, cr.TotalInstances, "objects created before Enable are never counted")
	assert.Equal(t, 1, cr.GarbageCollected)
	require.Len(t, cr.Instances, 1)
	assert.Same(t, kept, cr.Instances[0].Object)
	assert.Contains(t, cr.Instances[0].Caller, "allocateTracked")

	reg.Dispose(kept)
	cr = diagnostics.Snapshot()["tracked"]
	assert.Empty(t, cr.Instances)
}

//go:noinline
func allocatePair(reg *Registry[resource, *resource]) {
	a := reg.Get(0x9000, newResource("a"))
	reg.Get(0x9010, newResource("b"))
	reg.Dispose(a)
}

func TestDiagnosticsTwoObjects(t *testing.T) {
	reg := NewRegistry[resource]("pair", newReleaseLog().release)

	diagnostics.Enable(diagnostics.Options{})
	t.Cleanup(diagnostics.Disable)

	allocatePair(reg)

	require.Eventually(t, func() bool {
		collect()
		cr := diagnostics.Snapshot()["pair"]
		return cr != nil && cr.GarbageCollected == 1
	}, 5*time.Second, 10*time.Millisecond)

	cr := diagnostics.Snapshot()["pair"]
	assert.Equal(t, 2, cr.TotalInstances)
	assert.Empty(t, cr.Instances)
}
