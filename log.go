package xmlgo

import (
	"go.uber.org/zap"

	"github.com/obinnaokechukwu/xmlgo/internal/logging"
)

// SetLogger sets the logger used for library events: where libxml2 was
// loaded from, and wrappers released by the garbage collector instead of
// Close. Pass nil to discard logs, which is the default.
func SetLogger(l *zap.Logger) {
	logging.SetLogger(l)
}

// Logger returns the current library logger.
func Logger() *zap.Logger {
	return logging.Logger()
}
