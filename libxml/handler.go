//go:build !ios && !android && (amd64 || arm64)

package libxml

import (
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/obinnaokechukwu/xmlgo/internal/bridge"
)

// xmlError field offsets (64-bit).
const (
	errDomain  = 0
	errCode    = 4
	errMessage = 8
	errLevel   = 16
	errFile    = 24
	errLine    = 32
	errInt2    = 68 // column
)

// decodeError copies an xmlError into a Record.
func decodeError(p uintptr) Record {
	if p == 0 {
		return Record{}
	}
	return Record{
		Domain:  int(readInt32(p, errDomain)),
		Code:    int(readInt32(p, errCode)),
		Message: GoString(readPtr(p, errMessage)),
		Level:   Level(readInt32(p, errLevel)),
		File:    GoString(readPtr(p, errFile)),
		Line:    int(readInt32(p, errLine)),
		Column:  int(readInt32(p, errInt2)),
	}
}

func errorTrampoline(_ purego.CDecl, userData, xmlErr unsafe.Pointer) {
	appendRecord(uintptr(userData), decodeError(uintptr(xmlErr)))
}

// ErrorHandler returns the address of the structured error handler, with
// signature void (*)(void *user_data, const xmlError *error).
func ErrorHandler() uintptr {
	return bridge.Register("structured-error", errorTrampoline)
}

// WithStructuredErrors routes libxml2's global structured error hook to the
// scope identified by token while fn runs. The hook is thread-local in
// libxml2, so the goroutine is pinned to its OS thread for the duration.
// Whatever handler was installed before, by the host application or an
// enclosing scope, is restored afterwards.
func WithStructuredErrors(token uintptr, fn func()) {
	if xmlSetStructuredErrorFunc == nil {
		fn()
		return
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	prevHandler, prevCtx := currentStructuredHandler()
	xmlSetStructuredErrorFunc(token, ErrorHandler())
	defer xmlSetStructuredErrorFunc(prevCtx, prevHandler)
	fn()
}

// currentStructuredHandler returns the calling thread's structured handler
// and its context, or zeros when libxml2 does not export the slots. The
// caller must be locked to its OS thread.
func currentStructuredHandler() (handler, ctx uintptr) {
	if xmlStructuredErrorSlot == nil || xmlStructuredErrorContextSlot == nil {
		return 0, 0
	}
	if p := xmlStructuredErrorSlot(); p != 0 {
		handler = readPtr(p, 0)
	}
	if p := xmlStructuredErrorContextSlot(); p != 0 {
		ctx = readPtr(p, 0)
	}
	return handler, ctx
}

// Guard runs call with the global error hook pointed at a fresh collector.
// It is Collect for operations whose diagnostics go through the global hook.
func Guard(op string, call func() bool) error {
	return Collect(op, func(token uintptr) bool {
		var ok bool
		WithStructuredErrors(token, func() { ok = call() })
		return ok
	})
}

// GuardContext is Guard for calls that need a native working context; see
// CollectContext for the release order.
func GuardContext(op string, alloc func() uintptr, release func(uintptr), call func(ctxt uintptr) bool) error {
	return CollectContext(op, alloc, release, func(ctxt, token uintptr) bool {
		var ok bool
		WithStructuredErrors(token, func() { ok = call(ctxt) })
		return ok
	})
}
