package xmlgo

import (
	"github.com/obinnaokechukwu/xmlgo/diagnostics"
)

// DiagnosticsOptions configures wrapper tracking.
type DiagnosticsOptions = diagnostics.Options

// DiagnosticsReport summarizes tracked wrappers per class.
type DiagnosticsReport = diagnostics.Report

// EnableDiagnostics starts tracking wrapper allocations, discarding any
// previous tracking state. Only wrappers created afterwards are tracked.
func EnableDiagnostics(opts DiagnosticsOptions) {
	diagnostics.Enable(opts)
}

// DisableDiagnostics stops tracking and discards its state.
func DisableDiagnostics() {
	diagnostics.Disable()
}

// Diagnostics returns the current tracking report. Wrappers that were closed
// are absent; wrappers the garbage collector reclaimed without Close are
// counted as collected, which usually means a missing Close.
func Diagnostics() DiagnosticsReport {
	return diagnostics.Snapshot()
}
