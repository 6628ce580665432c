// Package handles maps integer tokens to Go values so that state can ride
// through native calls that only accept an opaque user-data pointer.
//
// Go pointers cannot be stored in native memory. Instead, a value is
// registered here and the returned token is passed as the native user-data
// argument; the trampoline that native code later invokes looks the value
// back up. Tokens are minted from a monotonic counter starting at 1, so zero
// is never a valid token and no token is reused while the process lives.
//
// Callers bracket every token: Allocate immediately before the native call
// sequence, Free immediately after.
package handles

import (
	"fmt"
	"sync"
)

var (
	mu      sync.RWMutex
	entries = make(map[uintptr]any)
	nextID  uintptr = 1
)

// Allocate stores v and returns a fresh token for it.
//
// Thread-safe.
func Allocate(v any) uintptr {
	mu.Lock()
	defer mu.Unlock()
	id := nextID
	nextID++
	entries[id] = v
	return id
}

// Get returns the value stored under token.
//
// A missing token means a bracket was broken (freed too early or never
// allocated), which is a bug in the caller, so Get panics instead of
// returning an error.
func Get(token uintptr) any {
	mu.RLock()
	v, ok := entries[token]
	mu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("xmlgo: context token %d is not allocated", token))
	}
	return v
}

// Lookup is the non-panicking form of Get. It returns nil if token is not
// allocated. Trampolines use it because a panic must never unwind through
// native frames.
func Lookup(token uintptr) any {
	mu.RLock()
	defer mu.RUnlock()
	return entries[token]
}

// Free removes token. Freeing an unknown token is a no-op.
//
// Thread-safe.
func Free(token uintptr) {
	mu.Lock()
	defer mu.Unlock()
	delete(entries, token)
}

// Count returns the number of allocated tokens.
// Useful for checking that brackets are balanced in tests.
func Count() int {
	mu.RLock()
	defer mu.RUnlock()
	return len(entries)
}
