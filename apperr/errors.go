// Package apperr defines the error taxonomy shared by the social, content,
// profile and messaging services.
package apperr

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Code classifies a service error.
type Code int

const (
	CodeUnknown Code = iota
	CodeInvalidArgument
	CodeConflict
	CodeNotFound
	CodeForbidden
	CodeInvalidState
	CodeStoreUnavailable
)

func (c Code) String() string {
	switch c {
	case CodeInvalidArgument:
		return "invalid_argument"
	case CodeConflict:
		return "conflict"
	case CodeNotFound:
		return "not_found"
	case CodeForbidden:
		return "forbidden"
	case CodeInvalidState:
		return "invalid_state"
	case CodeStoreUnavailable:
		return "store_unavailable"
	default:
		return "unknown"
	}
}

// Error is a classified service error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code, so callers can write
// errors.Is(err, apperr.ErrConflict).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrInvalidArgument  = &Error{Code: CodeInvalidArgument}
	ErrConflict         = &Error{Code: CodeConflict}
	ErrNotFound         = &Error{Code: CodeNotFound}
	ErrForbidden        = &Error{Code: CodeForbidden}
	ErrInvalidState     = &Error{Code: CodeInvalidState}
	ErrStoreUnavailable = &Error{Code: CodeStoreUnavailable}
)

// New creates a classified error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap classifies an existing error.
func Wrap(code Code, message string, err error) error {
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// FromDB classifies an error returned by GORM. Context cancellation is
// returned unchanged so callers can tell an abandoned request from an outage.
func FromDB(message string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(CodeNotFound, message, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Wrap(CodeConflict, message, err)
	default:
		return Wrap(CodeStoreUnavailable, message, err)
	}
}
