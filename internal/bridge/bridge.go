//go:build !ios && !android && (amd64 || arm64)

// Package bridge turns Go closures into function addresses native code can
// call.
//
// purego callbacks are a bounded resource that is never freed, so a closure
// is not converted directly. Instead each callback signature gets one shared
// trampoline, registered once, and the per-call Go state travels through the
// native user-data argument as a handles token. The token is the resource
// with a manual lifetime: whoever wraps a closure releases it once the native
// call sequence has returned.
package bridge

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/obinnaokechukwu/xmlgo/internal/handles"
)

var (
	trampolinesMu sync.Mutex
	trampolines   = make(map[string]uintptr)
)

// Register returns the native address of fn, creating it on first use.
// key names the signature; subsequent calls with the same key return the
// first address and ignore fn.
func Register(key string, fn any) uintptr {
	trampolinesMu.Lock()
	defer trampolinesMu.Unlock()

	if addr, ok := trampolines[key]; ok {
		return addr
	}
	addr := purego.NewCallback(fn)
	trampolines[key] = addr
	return addr
}

// Predicate decides whether node is visible. parent is the parent handle the
// native engine passed alongside node.
type Predicate func(node, parent uintptr) bool

// visibility is the state behind one wrapped predicate.
type visibility struct {
	pred    Predicate
	cascade bool

	mu        sync.Mutex
	invisible map[uintptr]struct{}
	panicked  any
}

func (v *visibility) visible(node, parent uintptr) (ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.panicked != nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			v.panicked = r
			ok = false
		}
	}()

	if !v.cascade {
		return v.pred(node, parent)
	}

	if _, hidden := v.invisible[parent]; hidden && parent != 0 {
		v.invisible[node] = struct{}{}
		return false
	}
	if v.pred(node, parent) {
		return true
	}
	v.invisible[node] = struct{}{}
	return false
}

// Callback is a wrapped predicate ready to be handed to native code.
type Callback struct {
	mu    sync.Mutex
	token uintptr
	state *visibility
}

// Wrap wraps pred for native invocation. With cascade set, a node whose
// parent was found invisible is invisible too, without consulting pred, so
// excluding an element excludes its whole subtree.
//
// The returned Callback must be released with Release.
func Wrap(pred Predicate, cascade bool) *Callback {
	v := &visibility{pred: pred, cascade: cascade}
	if cascade {
		v.invisible = make(map[uintptr]struct{})
	}
	return &Callback{token: handles.Allocate(v), state: v}
}

// Addr returns the address of the visibility trampoline, with signature
// int (*)(void *user_data, xmlNodePtr node, xmlNodePtr parent).
func (c *Callback) Addr() uintptr {
	return Register("visibility", visibilityTrampoline)
}

// Token returns the user-data value to pass with Addr. It is 0 after
// Release.
func (c *Callback) Token() uintptr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Recovered returns the value the predicate panicked with, or nil. After a
// panic every remaining node is reported invisible; the caller re-raises the
// panic once the native call has returned.
func (c *Callback) Recovered() any {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	return c.state.panicked
}

// Release frees the callback's state. It is safe to call more than once.
func (c *Callback) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != 0 {
		handles.Free(c.token)
		c.token = 0
	}
}

// Invoke runs the predicate stored under token and returns 1 for visible and
// 0 for invisible. An unknown token yields 0. Panics are recovered, since
// they must not unwind into native frames.
func Invoke(token, node, parent uintptr) int32 {
	v, ok := handles.Lookup(token).(*visibility)
	if !ok {
		return 0
	}
	if v.visible(node, parent) {
		return 1
	}
	return 0
}

func visibilityTrampoline(_ purego.CDecl, userData, node, parent unsafe.Pointer) int32 {
	return Invoke(uintptr(userData), uintptr(node), uintptr(parent))
}

// NodeSet returns a predicate that is true for each root and everything
// beneath one. Ancestry is resolved by walking upward, first through the
// parent handle the native engine supplies and then through parentOf, until
// a root is found or stop (or 0) is reached.
func NodeSet(roots []uintptr, parentOf func(uintptr) uintptr, stop uintptr) Predicate {
	set := make(map[uintptr]struct{}, len(roots))
	for _, r := range roots {
		set[r] = struct{}{}
	}
	return func(node, parent uintptr) bool {
		if _, ok := set[node]; ok {
			return true
		}
		for cur := parent; cur != 0; cur = parentOf(cur) {
			if _, ok := set[cur]; ok {
				return true
			}
			if cur == stop {
				break
			}
		}
		return false
	}
}
