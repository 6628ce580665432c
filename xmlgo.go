//go:build !ios && !android && (amd64 || arm64)

// Package xmlgo provides Go bindings to libxml2 without CGO, using purego.
//
// Native resources (documents, compiled XPath expressions, schemas,
// validators, DTDs) are wrapped in Go values whose lifetimes are managed
// for you: each has a Close method that releases it immediately and is safe
// to call more than once, and a wrapper that becomes unreachable without
// Close is still released by the garbage collector. Parsing the same handle
// twice never yields two wrappers.
//
// Failed native operations return a *StructuredError carrying every
// diagnostic libxml2 emitted during the call, in order.
//
// For low-level access to the bindings, see package libxml.
package xmlgo

import (
	"github.com/obinnaokechukwu/xmlgo/internal/bindings"
	"github.com/obinnaokechukwu/xmlgo/libxml"
)

// Init loads libxml2. This is called automatically when using the API, but
// can be called explicitly to check for errors. It is safe to call multiple
// times.
func Init() error {
	return libxml.Load()
}

// IsLoaded returns true if libxml2 has been successfully loaded.
func IsLoaded() bool {
	return libxml.IsLoaded()
}

// Version returns the libxml2 version string, e.g. "21207", or "" when the
// library is not loaded.
func Version() string {
	return libxml.Version()
}

// LibraryPath returns the file libxml2 was loaded from.
func LibraryPath() string {
	return bindings.Path()
}

// FindLibrary reports the libxml2 file Init would load first, without
// loading it. Useful when Init fails to tell a missing library apart from
// one that exists but cannot be opened.
func FindLibrary() (string, error) {
	return bindings.FindLibrary()
}
