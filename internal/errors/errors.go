package errors

import (
	"errors"
	"fmt"
)

// Code categorizes an application error
type Code string

const (
	// CodeUnknown indicates an unknown error
	CodeUnknown Code = "unknown"

	// CodeInvalidArgument indicates the caller passed an invalid argument
	CodeInvalidArgument Code = "invalid_argument"

	// CodeNotFound indicates a requested resource was not found
	CodeNotFound Code = "not_found"

	// CodeAlreadyExists indicates an attempt to create a resource that already exists
	CodeAlreadyExists Code = "already_exists"

	// CodeInsufficientResource indicates a resource pool (mana, charges,
	// ammunition, recovery dice) cannot cover the requested operation.
	// Surfaced to the player as a warning, never as a failure.
	CodeInsufficientResource Code = "insufficient_resource"

	// CodePrecondition indicates a rules precondition is not met
	// (level too low, prerequisite capacities not learned, slot occupied).
	CodePrecondition Code = "precondition_failed"

	// CodeDeclined indicates the player declined a confirmation prompt
	CodeDeclined Code = "declined"

	// CodePermissionDenied indicates the participant lacks authority for
	// the operation (GM-only writes, acting out of turn)
	CodePermissionDenied Code = "permission_denied"

	// CodeInternal indicates an internal error
	CodeInternal Code = "internal"
)

// Error is an application error with a code and optional metadata
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta adds metadata to the error (builder pattern)
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates a new error with the given code and message
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new error with a formatted message
func Newf(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with additional context, preserving its code
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return &Error{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
			Meta:    copyMeta(appErr.Meta),
		}
	}

	return &Error{
		Code:    CodeUnknown,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// NotFound creates a not found error
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// NotFoundf creates a formatted not found error
func NotFoundf(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

// InvalidArgument creates an invalid argument error
func InvalidArgument(message string) *Error {
	return New(CodeInvalidArgument, message)
}

// InvalidArgumentf creates a formatted invalid argument error
func InvalidArgumentf(format string, args ...any) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

// AlreadyExists creates an already exists error
func AlreadyExists(message string) *Error {
	return New(CodeAlreadyExists, message)
}

// AlreadyExistsf creates a formatted already exists error
func AlreadyExistsf(format string, args ...any) *Error {
	return Newf(CodeAlreadyExists, format, args...)
}

// InsufficientResource creates a resource-insufficiency rejection
func InsufficientResource(message string) *Error {
	return New(CodeInsufficientResource, message)
}

// InsufficientResourcef creates a formatted resource-insufficiency rejection
func InsufficientResourcef(format string, args ...any) *Error {
	return Newf(CodeInsufficientResource, format, args...)
}

// Precondition creates a rules-precondition rejection
func Precondition(message string) *Error {
	return New(CodePrecondition, message)
}

// Preconditionf creates a formatted rules-precondition rejection
func Preconditionf(format string, args ...any) *Error {
	return Newf(CodePrecondition, format, args...)
}

// Declined creates a confirmation-declined error
func Declined(message string) *Error {
	return New(CodeDeclined, message)
}

// PermissionDenied creates an authority rejection
func PermissionDenied(message string) *Error {
	return New(CodePermissionDenied, message)
}

// PermissionDeniedf creates a formatted authority rejection
func PermissionDeniedf(format string, args ...any) *Error {
	return Newf(CodePermissionDenied, format, args...)
}

// Internal creates an internal error
func Internal(message string) *Error {
	return New(CodeInternal, message)
}

// Internalf creates a formatted internal error
func Internalf(format string, args ...any) *Error {
	return Newf(CodeInternal, format, args...)
}

// Is checks if the error carries a specific code
func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return Is(err, CodeNotFound)
}

// IsInvalidArgument checks if the error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return Is(err, CodeInvalidArgument)
}

// IsInsufficientResource checks if the error is a resource rejection
func IsInsufficientResource(err error) bool {
	return Is(err, CodeInsufficientResource)
}

// IsPrecondition checks if the error is a rules-precondition rejection
func IsPrecondition(err error) bool {
	return Is(err, CodePrecondition)
}

// IsDeclined checks if the error is a confirmation decline
func IsDeclined(err error) bool {
	return Is(err, CodeDeclined)
}

// IsPermissionDenied checks if the error is an authority rejection
func IsPermissionDenied(err error) bool {
	return Is(err, CodePermissionDenied)
}

// IsRejection reports whether the error is a user-facing rejection rather
// than a programming or infrastructure failure. Rejections abort the
// operation with no state change and are shown as warnings.
func IsRejection(err error) bool {
	switch GetCode(err) {
	case CodeInsufficientResource, CodePrecondition, CodeDeclined, CodePermissionDenied:
		return true
	}
	return false
}

// GetCode returns the error code
func GetCode(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMeta returns the error metadata
func GetMeta(err error) map[string]any {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Meta
	}
	return nil
}

func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}

	copied := make(map[string]any, len(meta))
	for k, v := range meta {
		copied[k] = v
	}
	return copied
}
