//go:build !ios && !android && (amd64 || arm64)

package xmlgo

import (
	"errors"

	"github.com/obinnaokechukwu/xmlgo/internal/bindings"
	"github.com/obinnaokechukwu/xmlgo/libxml"
)

// StructuredError is returned when a native operation fails after libxml2
// reported diagnostics. Its message is the concatenation of every record's
// message, in emission order.
type StructuredError = libxml.StructuredError

// OpError is returned when a native operation fails without diagnostics.
type OpError = libxml.OpError

// Record is one libxml2 diagnostic.
type Record = libxml.Record

// Level is a diagnostic's severity.
type Level = libxml.Level

const (
	LevelNone    = libxml.LevelNone
	LevelWarning = libxml.LevelWarning
	LevelError   = libxml.LevelError
	LevelFatal   = libxml.LevelFatal
)

// Common errors
var (
	// ErrNotLoaded indicates libxml2 is not loaded.
	ErrNotLoaded = bindings.ErrNotLoaded

	// ErrLibraryNotFound indicates libxml2 could not be located.
	ErrLibraryNotFound = bindings.ErrLibraryNotFound

	// ErrOutOfMemory indicates libxml2 could not allocate a working context.
	ErrOutOfMemory = libxml.ErrOutOfMemory

	// ErrFailed is wrapped by every StructuredError and OpError.
	ErrFailed = libxml.ErrFailed

	// ErrDisposed indicates the resource has been closed.
	ErrDisposed = errors.New("xmlgo: resource is closed")

	// ErrNoRoot indicates the document has no root element.
	ErrNoRoot = errors.New("xmlgo: document has no root element")

	// ErrConflictingVisibility indicates both a visibility predicate and a
	// node set were given for canonicalization.
	ErrConflictingVisibility = errors.New("xmlgo: IsVisible and Nodes are mutually exclusive")

	// ErrNotNodeSet indicates an XPath expression did not select nodes.
	ErrNotNodeSet = errors.New("xmlgo: xpath result is not a node-set")

	// ErrForeignNode indicates a node from another document was passed.
	ErrForeignNode = errors.New("xmlgo: node belongs to a different document")
)

// Records returns the diagnostics carried by err, or nil.
func Records(err error) []Record {
	return libxml.Records(err)
}

// IsStructured returns true if err carries libxml2 diagnostics.
func IsStructured(err error) bool {
	var se *StructuredError
	return errors.As(err, &se)
}
