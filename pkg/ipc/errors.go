package ipc

import (
	"errors"
	"fmt"

	"github.com/crest-wm/crest-go/pkg/wire"
)

// ErrorKind classifies a method failure.
type ErrorKind string

const (
	// KindValidation means a required field is missing or a present
	// field has the wrong shape. Rejected before any state is touched.
	KindValidation ErrorKind = "validation"

	// KindNotFound means an id does not resolve to a live resource.
	KindNotFound ErrorKind = "not-found"

	// KindPrecondition means the resource exists but is not eligible
	// for the requested operation.
	KindPrecondition ErrorKind = "precondition"

	// KindUnknownMethod means no handler is registered for the method.
	KindUnknownMethod ErrorKind = "unknown-method"
)

// Error is a structured method error. It is reported to the caller as
// an error response and is never fatal to the compositor.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Validationf formats a validation error.
func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf formats a not-found error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Preconditionf formats a precondition error.
func Preconditionf(format string, args ...any) *Error {
	return &Error{Kind: KindPrecondition, Message: fmt.Sprintf(format, args...)}
}

// ErrorResponse converts an error into a wire error object. Errors that
// are not *Error are reported with the validation kind; handlers are
// expected to return structured errors only.
func ErrorResponse(err error) wire.Object {
	var e *Error
	if errors.As(err, &e) {
		return wire.Error(string(e.Kind), e.Message)
	}
	return wire.Error(string(KindValidation), err.Error())
}
