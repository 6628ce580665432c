//go:build !ios && !android && (amd64 || arm64)

// Package platform describes how shared libraries are named and laid out on
// the platforms xmlgo supports.
package platform

import (
	"fmt"
	"runtime"
	"unsafe"
)

// PointerSize is the size of a native pointer in bytes. The struct offsets
// used by xmlgo assume 8.
const PointerSize = unsafe.Sizeof(uintptr(0))

// LibraryExtension is the file extension for shared libraries on this platform.
var LibraryExtension string

// LibraryPrefix is the prefix for shared library names on this platform.
// libxml2 keeps the "lib" prefix on Windows builds too (MSYS2, vcpkg).
var LibraryPrefix = "lib"

func init() {
	switch runtime.GOOS {
	case "darwin":
		LibraryExtension = ".dylib"
	case "windows":
		LibraryExtension = ".dll"
	default: // linux, freebsd, etc.
		LibraryExtension = ".so"
	}
}

// FormatLibraryName returns the platform-specific library filename.
// If version is 0, returns the unversioned library name.
//
// Examples:
//   - Linux:   FormatLibraryName("xml2", 2) -> "libxml2.so.2"
//   - macOS:   FormatLibraryName("xml2", 2) -> "libxml2.2.dylib"
//   - Windows: FormatLibraryName("xml2", 2) -> "libxml2-2.dll"
func FormatLibraryName(name string, version int) string {
	switch runtime.GOOS {
	case "darwin":
		if version > 0 {
			return fmt.Sprintf("%s%s.%d%s", LibraryPrefix, name, version, LibraryExtension)
		}
		return fmt.Sprintf("%s%s%s", LibraryPrefix, name, LibraryExtension)
	case "windows":
		if version > 0 {
			return fmt.Sprintf("%s%s-%d%s", LibraryPrefix, name, version, LibraryExtension)
		}
		return fmt.Sprintf("%s%s%s", LibraryPrefix, name, LibraryExtension)
	default: // linux, freebsd
		if version > 0 {
			return fmt.Sprintf("%s%s%s.%d", LibraryPrefix, name, LibraryExtension, version)
		}
		return fmt.Sprintf("%s%s%s", LibraryPrefix, name, LibraryExtension)
	}
}
