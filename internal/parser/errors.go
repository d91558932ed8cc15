package parser

import (
	"errors"
	"fmt"
)

// ErrNotRecord reports a line that carries no observation: a blank line, a
// comment, a directive or a non-QSO Cabrillo line. Callers ignore it silently.
var ErrNotRecord = errors.New("not a record")

// LineError reports a malformed input line. The line is skipped and counted;
// it never aborts the file.
type LineError struct {
	// Origin is the file the line came from.
	Origin string

	// Line is the 1-based line number, or the row number for workbooks.
	Line int

	// Reason says what was wrong with the line.
	Reason string
}

// Error implements the error interface.
func (e *LineError) Error() string {
	if e.Origin == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s", e.Origin, e.Line, e.Reason)
}

// NewLineError creates a LineError with a formatted reason.
func NewLineError(origin string, line int, format string, args ...any) *LineError {
	return &LineError{Origin: origin, Line: line, Reason: fmt.Sprintf(format, args...)}
}
