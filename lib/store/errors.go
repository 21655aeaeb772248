package store

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the error type returned by every Store operation. Code is a stable
// discriminant, Msg a human readable description and Err the underlying cause
// (if any).
type Error struct {
	Code Code   // The error code
	Msg  string // The error message
	Err  error  // The wrapped cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store error (%s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("store error (%s): %s", e.Code, e.Msg)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same code, so that
// errors.Is(err, &Error{Code: CodeSerialization}) works without comparing messages.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code Code, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// wrapError creates a new Error with the given code, message and cause.
func wrapError(code Code, err error, format string, args ...any) *Error {
	return &Error{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
		Err:  err,
	}
}

// IsCode reports whether err is (or wraps) an *Error with the given code.
func IsCode(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// --------------------------------------------------------------------------
// Error Codes
// --------------------------------------------------------------------------

type Code string

const (
	CodeOpenFailure          Code = "OPEN_FAILURE"          // The persistent namespace could not be opened
	CodeTransactionFailure   Code = "TRANSACTION_FAILURE"   // An engine read or write failed
	CodeSerialization        Code = "SERIALIZATION_ERROR"   // The value cannot be encoded
	CodeDeserialization      Code = "DESERIALIZATION_ERROR" // The stored data cannot be decoded
	CodeNotSupported         Code = "NOT_SUPPORTED"         // Persistent storage or an engine feature is missing
	CodeInvalidArgument      Code = "INVALID_ARGUMENT"      // A key, amount or payload violates its constraint
	CodeInvalidConfiguration Code = "INVALID_CONFIGURATION" // Configure was called with an invalid Config
)
