package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes, one per failing subsystem.
const (
	// ErrConfig covers loading, validating and watching stripchart.yaml.
	ErrConfig = "CONFIG"
	// ErrEval is an equation that does not compile.
	ErrEval = "EVAL"
	// ErrSource is a data source that cannot be opened or read at setup.
	ErrSource = "SOURCE"
	// ErrFeed is the live feed server.
	ErrFeed = "FEED"
)

// Error is a structured error with code, message, suggestion, and optional cause.
// It renders as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates an error without an underlying cause.
func New(code, message, suggestion string) *Error {
	return WrapWithCode(nil, code, message, suggestion)
}

// WrapWithCode attaches a code, message and suggestion to err.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{Code: code, Message: message, Suggestion: suggestion, Cause: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✗ %s\n", e.Message)
	for _, detail := range []string{e.causeText(), e.Suggestion} {
		if detail != "" {
			fmt.Fprintf(&b, "\n  %s\n", detail)
		}
	}
	return b.String()
}

func (e *Error) causeText() string {
	if e.Cause == nil {
		return ""
	}
	return e.Cause.Error()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var scErr *Error
	if errors.As(err, &scErr) {
		return scErr.Code == code
	}
	return false
}

// ExitError carries a process exit code for a command that already reported
// its own failure.
type ExitError struct {
	Code int
}

// NewExitError creates an ExitError with the given code.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// GetExitCode extracts the code of an ExitError anywhere in err's chain.
func GetExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
