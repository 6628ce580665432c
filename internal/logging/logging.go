// Package logging holds the process-wide logger shared by every xmlgo package.
package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// Logger returns the current logger. It is a no-op logger until SetLogger is
// called.
func Logger() *zap.Logger {
	return logger.Load()
}

// SetLogger replaces the process logger. Passing nil restores the no-op
// logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l.Named("xmlgo"))
}
