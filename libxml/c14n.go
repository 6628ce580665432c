//go:build !ios && !android && (amd64 || arm64)

package libxml

import (
	"fortio.org/safecast"

	"github.com/obinnaokechukwu/xmlgo/internal/bindings"
)

// Canonicalization modes (xmlC14NMode).
const (
	C14N10          = 0
	C14NExclusive10 = 1
	C14N11          = 2
)

// Canonicalize runs xmlC14NExecute over doc. visible and userData are the
// visibility callback and its user data (both 0 for the whole document).
// prefixes lists inclusive namespace prefixes for exclusive mode.
func Canonicalize(doc Doc, visible, userData uintptr, mode int, prefixes []string, withComments bool) ([]byte, error) {
	if xmlC14NExecute == nil {
		return nil, bindings.ErrNotLoaded
	}
	cmode, err := safecast.Conv[int32](mode)
	if err != nil {
		return nil, err
	}

	arr, err := newStringArray(prefixes)
	if err != nil {
		return nil, err
	}
	defer arr.free()

	alloc := func() uintptr { return xmlAllocOutputBuffer(0) }
	release := func(buf uintptr) { xmlOutputBufferClose(buf) }

	var out []byte
	err = GuardContext("canonicalize", alloc, release, func(buf uintptr) bool {
		comments := int32(0)
		if withComments {
			comments = 1
		}
		if xmlC14NExecute(doc, visible, userData, cmode, uintptr(arr), comments, buf) < 0 {
			return false
		}
		out = GoBytes(xmlOutputBufferGetContent(buf), int(xmlOutputBufferGetSize(buf)))
		if out == nil {
			out = []byte{}
		}
		return true
	})
	return out, err
}
