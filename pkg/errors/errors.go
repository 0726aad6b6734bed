// Package errors defines the coded errors shared by the pipeline, the CLI
// and the HTTP API.
//
// Every failure carries a [Code] and, where it concerns specific parts of
// the map, the offending cluster, territory or node ids:
//
//	err := errors.New(errors.ErrCodeColoringExhausted, "no 4-coloring").WithIDs("3", "7")
//	if errors.IsUserError(err) {
//	    // exit 2, HTTP 400
//	}
//
// Codes are grouped into categories (see [Code.Category]); geometry codes
// are normally recovered and reported as warnings rather than returned.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error is a structured error with a code, offending ids and optional cause.
type Error struct {
	Code    Code     // Machine-readable error code
	Message string   // Human-readable message
	IDs     []string // Offending cluster, territory or node ids (optional)
	Cause   error    // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if len(e.IDs) > 0 {
		fmt.Fprintf(&b, " [ids: %s]", strings.Join(e.IDs, ","))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithIDs returns e with the given offending ids appended.
func (e *Error) WithIDs(ids ...string) *Error {
	e.IDs = append(e.IDs, ids...)
	return e
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetIDs extracts the offending ids from an error, if available.
func GetIDs(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.IDs
	}
	return nil
}

// UserMessage returns the message of err without code, ids or cause.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
