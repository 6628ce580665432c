// Package lifecycle manages Go wrapper objects for native handles.
//
// Every wrapper type (documents, compiled XPath expressions, schemas,
// validators) owns one Registry. The registry guarantees three things:
//
//   - identity: for a given still-live handle there is at most one wrapper,
//     so a handle returned twice by native code maps to the same Go value;
//   - at-most-once release: Dispose is idempotent and the native release
//     function runs exactly once per handle;
//   - a safety net: a wrapper that becomes unreachable without Dispose still
//     has its handle released by a runtime cleanup.
//
// Wrapper types embed Object and are created only through Registry.Get:
//
//	type Document struct {
//		lifecycle.Object
//	}
//
//	var documents = lifecycle.NewRegistry[Document]("Document", freeDoc)
//
//	func (d *Document) Close() error {
//		documents.Dispose(d)
//		return nil
//	}
//
// Releases driven by the cleanup are not reported to the diagnostics tracker
// as deallocations, which is what lets a diagnostics report tell an explicit
// Close apart from a leak the collector had to clean up.
package lifecycle

import (
	"runtime"
	"sync"
	"sync/atomic"
	"weak"

	"go.uber.org/zap"

	"github.com/obinnaokechukwu/xmlgo/diagnostics"
	"github.com/obinnaokechukwu/xmlgo/internal/logging"
)

// Handle is an opaque native pointer. The zero Handle means "no resource"
// and marks a disposed wrapper.
type Handle uintptr

// Object is embedded in every wrapper type. Its zero value is filled in by
// Registry.Get.
type Object struct {
	handle atomic.Uintptr
	class  string
}

// Handle returns the native handle, or 0 once the wrapper is disposed.
func (o *Object) Handle() Handle {
	return Handle(o.handle.Load())
}

// Disposed reports whether the wrapper has been released.
func (o *Object) Disposed() bool {
	return o.handle.Load() == 0
}

// Class returns the name of the registry that created the wrapper.
func (o *Object) Class() string {
	return o.class
}

func (o *Object) object() *Object { return o }

// Wrapper is satisfied by any pointer to a struct embedding Object.
type Wrapper interface {
	object() *Object
}

// slot is what a runtime cleanup receives. It must never point at the
// wrapper it belongs to, or the wrapper could never become unreachable.
type slot[T any] struct {
	handle     Handle
	ref        weak.Pointer[T]
	cleanup    runtime.Cleanup
	superseded bool
}

// Registry tracks the live wrappers of one wrapper type.
type Registry[T any, PT interface {
	*T
	Wrapper
}] struct {
	class   string
	release func(Handle)

	mu    sync.Mutex
	index map[Handle]*slot[T]
}

// NewRegistry creates the registry for wrapper type T. release frees a
// native handle; it is called exactly once per handle, either by Dispose or
// by the cleanup of an unreachable wrapper.
func NewRegistry[T any, PT interface {
	*T
	Wrapper
}](class string, release func(Handle)) *Registry[T, PT] {
	return &Registry[T, PT]{
		class:   class,
		release: release,
		index:   make(map[Handle]*slot[T]),
	}
}

// Class returns the registry's class name.
func (r *Registry[T, PT]) Class() string {
	return r.class
}

// Get returns the live wrapper for h, constructing one with build if none
// exists. build must not call back into r. Get returns nil for the zero
// handle.
func (r *Registry[T, PT]) Get(h Handle, build func() PT) PT {
	if h == 0 {
		return nil
	}

	r.mu.Lock()
	if s, ok := r.index[h]; ok {
		if v := s.ref.Value(); v != nil {
			r.mu.Unlock()
			return PT(v)
		}
		// The old wrapper is unreachable but its cleanup has not run yet.
		// The handle is still live and now belongs to the new wrapper.
		s.superseded = true
	}

	obj := build()
	if obj == nil {
		r.mu.Unlock()
		return nil
	}
	o := obj.object()
	o.handle.Store(uintptr(h))
	o.class = r.class

	s := &slot[T]{handle: h, ref: weak.Make((*T)(obj))}
	s.cleanup = runtime.AddCleanup((*T)(obj), r.reclaim, s)
	r.index[h] = s
	r.mu.Unlock()

	diagnostics.Current().Allocate(r.trackable(s.ref), r.class)
	return obj
}

// Peek returns the live wrapper for h without constructing one.
func (r *Registry[T, PT]) Peek(h Handle) (PT, bool) {
	if h == 0 {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.index[h]
	if !ok {
		return nil, false
	}
	v := s.ref.Value()
	if v == nil {
		return nil, false
	}
	return PT(v), true
}

// Dispose releases obj's native handle. Disposing an already disposed
// wrapper, or a nil one, does nothing.
func (r *Registry[T, PT]) Dispose(obj PT) {
	if obj == nil {
		return
	}
	ref := weak.Make((*T)(obj))

	r.mu.Lock()
	h := Handle(obj.object().handle.Swap(0))
	if h == 0 {
		r.mu.Unlock()
		return
	}
	if s, ok := r.index[h]; ok && s.ref == ref {
		s.cleanup.Stop()
		delete(r.index, h)
	}
	r.mu.Unlock()

	r.release(h)
	diagnostics.Current().Deallocate(diagnostics.Object{Key: ref})
}

// Len returns the number of handles in the instance index, including
// wrappers that are unreachable but not yet cleaned up.
func (r *Registry[T, PT]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.index)
}

func (r *Registry[T, PT]) reclaim(s *slot[T]) {
	r.mu.Lock()
	if s.superseded {
		r.mu.Unlock()
		return
	}
	if r.index[s.handle] == s {
		delete(r.index, s.handle)
	}
	r.mu.Unlock()

	logging.Logger().Debug("releasing unreachable wrapper",
		zap.String("class", r.class),
		zap.Uintptr("handle", uintptr(s.handle)))
	r.release(s.handle)
}

func (r *Registry[T, PT]) trackable(ref weak.Pointer[T]) diagnostics.Object {
	return diagnostics.Object{
		Key: ref,
		Resolve: func() any {
			if v := ref.Value(); v != nil {
				return PT(v)
			}
			return nil
		},
	}
}

// Conditional wraps free so that it is skipped while owned reports that the
// handle still belongs to a container (for example a DTD that is still a
// document's internal subset). The wrapper's bookkeeping completes either way.
func Conditional(owned func(Handle) bool, free func(Handle)) func(Handle) {
	return func(h Handle) {
		if owned(h) {
			logging.Logger().Debug("skipping release of owned handle",
				zap.Uintptr("handle", uintptr(h)))
			return
		}
		free(h)
	}
}
