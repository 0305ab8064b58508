// Package domainerrors provides coded errors for the catalog domain.
// Services return these so transport and CLI layers can translate them
// uniformly without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeBadRequest marks malformed operator input (bad form values, bad flags).
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks a requested entity with no backing record.
	CodeNotFound Code = "not_found"
	// CodeValidation marks a record that failed its register or data schema.
	CodeValidation Code = "validation_failed"
	// CodeUnresolvedReference marks a name that is not registered in the
	// registry it was resolved against.
	CodeUnresolvedReference Code = "unresolved_reference"
	// CodeCyclicHierarchy marks a group parent chain that loops back on itself.
	CodeCyclicHierarchy Code = "cyclic_hierarchy"
	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal_error"
)

// Error carries a classification code alongside the message and cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a coded error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error from a format string.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf extracts the code from err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the operator-facing message from err. Uncoded errors
// fall back to their plain Error() text.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// ToHTTPStatus maps a code to the HTTP status the transport layer should emit.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation, CodeUnresolvedReference, CodeCyclicHierarchy:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
