package libxml

import (
	"errors"
	"fmt"
	"strings"
)

// Level is the severity libxml2 attaches to a diagnostic.
type Level int

const (
	LevelNone Level = iota
	LevelWarning
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Record is one structured diagnostic emitted during a native call.
type Record struct {
	Domain  int    `json:"domain" msgpack:"domain"`
	Code    int    `json:"code" msgpack:"code"`
	Level   Level  `json:"level" msgpack:"level"`
	Message string `json:"message" msgpack:"message"`
	File    string `json:"file,omitempty" msgpack:"file,omitempty"`
	Line    int    `json:"line,omitempty" msgpack:"line,omitempty"`
	Column  int    `json:"column,omitempty" msgpack:"column,omitempty"`
}

func (r Record) String() string {
	msg := strings.TrimRight(r.Message, "\n")
	switch {
	case r.File != "" && r.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", r.File, r.Line, r.Level, msg)
	case r.Line > 0:
		return fmt.Sprintf("line %d: %s: %s", r.Line, r.Level, msg)
	default:
		return fmt.Sprintf("%s: %s", r.Level, msg)
	}
}

// ErrOutOfMemory is returned when libxml2 cannot allocate a working context.
var ErrOutOfMemory = errors.New("xmlgo: out of memory")

// ErrFailed is wrapped by every error returned for a failed native call.
var ErrFailed = errors.New("xmlgo: native operation failed")

// StructuredError is raised when a native call fails after emitting at least
// one diagnostic. Records preserve emission order.
type StructuredError struct {
	Op      string
	Records []Record
}

// Error returns the concatenation of every record's message.
func (e *StructuredError) Error() string {
	var b strings.Builder
	for _, r := range e.Records {
		b.WriteString(r.Message)
	}
	return b.String()
}

func (e *StructuredError) Unwrap() error { return ErrFailed }

// OpError is raised when a native call fails without emitting diagnostics.
type OpError struct {
	Op string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("xmlgo: %s failed", e.Op)
}

func (e *OpError) Unwrap() error { return ErrFailed }

// failure builds the error for a failed operation from what was collected.
func failure(op string, records []Record) error {
	if len(records) == 0 {
		return &OpError{Op: op}
	}
	return &StructuredError{Op: op, Records: records}
}

// Records returns the structured records carried by err, if any.
func Records(err error) []Record {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Records
	}
	return nil
}
