// Package vm - error handling with stack traces
package vm

import (
	"fmt"
	"strings"

	"github.com/edadma/slate-sub000/pkg/value"
)

// StackFrame represents a single frame in the call stack.
// It captures information about where execution is occurring.
type StackFrame struct {
	Name       string // function or method name, empty for anonymous closures
	SourceLine int    // source line active when the frame was captured
}

// RuntimeError represents a fatal Slate runtime error (spec.md §7),
// classified by Kind and carrying the call stack active when it escaped.
type RuntimeError struct {
	Kind       value.ErrorKind
	Message    string
	StackTrace []StackFrame
}

// Error implements the error interface.
// It formats the error message with a stack trace.
func (e *RuntimeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Kind, e.Message)

	if len(e.StackTrace) > 0 {
		b.WriteString("\n\nStack trace:")
		for _, frame := range e.StackTrace {
			name := frame.Name
			if name == "" {
				name = "<anonymous>"
			}
			fmt.Fprintf(&b, "\n  at %s [line %d]", name, frame.SourceLine)
		}
	}

	return b.String()
}

// newRuntimeError creates a new RuntimeError with the given kind, message
// and call stack, innermost frame first.
func newRuntimeError(kind value.ErrorKind, message string, stack []StackFrame) *RuntimeError {
	return &RuntimeError{
		Kind:       kind,
		Message:    message,
		StackTrace: stack,
	}
}
