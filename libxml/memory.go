//go:build !ios && !android && (amd64 || arm64)

package libxml

import (
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/obinnaokechukwu/xmlgo/internal/bindings"
	"github.com/obinnaokechukwu/xmlgo/internal/platform"
)

// GoString copies a NUL-terminated native string into Go memory.
func GoString(p uintptr) string {
	if p == 0 {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
}

// GoBytes copies n bytes of native memory into a new slice.
func GoBytes(p uintptr, n int) []byte {
	if p == 0 || n <= 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
	return out
}

// Free releases memory allocated by libxml2's allocator.
func Free(p uintptr) {
	if p == 0 || xmlFreeFn == 0 {
		return
	}
	purego.SyscallN(xmlFreeFn, p)
}

// takeString copies and frees an xmlChar* the caller owns.
func takeString(p uintptr) string {
	s := GoString(p)
	Free(p)
	return s
}

// stringArray is a NULL-terminated native array of native strings.
type stringArray uintptr

// newStringArray allocates a NULL-terminated char** with libxml2's allocator.
// An empty input yields a NULL array. A failed allocation frees whatever was
// built and returns ErrOutOfMemory.
func newStringArray(items []string) (stringArray, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if xmlMallocFn == 0 {
		return 0, bindings.ErrNotLoaded
	}
	size := uintptr(len(items)+1) * platform.PointerSize
	arr, _, _ := purego.SyscallN(xmlMallocFn, size)
	if arr == 0 {
		return 0, ErrOutOfMemory
	}
	slots := unsafe.Slice((*uintptr)(unsafe.Pointer(arr)), len(items)+1)
	clear(slots)
	for i, s := range items {
		if slots[i] = xmlStrdup(s); slots[i] == 0 {
			stringArray(arr).free()
			return 0, ErrOutOfMemory
		}
	}
	return stringArray(arr), nil
}

func (a stringArray) free() {
	if a == 0 {
		return
	}
	for p := uintptr(a); ; p += platform.PointerSize {
		s := *(*uintptr)(unsafe.Pointer(p))
		if s == 0 {
			break
		}
		Free(s)
	}
	Free(uintptr(a))
}

// readPtr reads a pointer-sized field at off bytes into the struct at base.
func readPtr(base uintptr, off uintptr) uintptr {
	return *(*uintptr)(unsafe.Pointer(base + off))
}

func readInt32(base uintptr, off uintptr) int32 {
	return *(*int32)(unsafe.Pointer(base + off))
}

func readFloat64(base uintptr, off uintptr) float64 {
	return *(*float64)(unsafe.Pointer(base + off))
}
