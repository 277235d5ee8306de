package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies failures so callers can surface them without string matching.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindInvalidInput       Kind = "invalid_input"
	KindInsufficientStock  Kind = "insufficient_stock"
	KindInsufficientPoints Kind = "insufficient_points"
	KindInvalidState       Kind = "invalid_state"
	KindUnauthenticated    Kind = "unauthenticated"
	KindForbidden          Kind = "forbidden"
	KindConflict           Kind = "conflict"
	KindContention         Kind = "contention" // lock wait / deadlock, safe to retry the whole operation
	KindInternal           Kind = "internal"
)

// Error is a classified error carrying an optional cause.
type Error struct {
	Kind    Kind
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

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error     { return newf(KindNotFound, format, args...) }
func InvalidInput(format string, args ...any) *Error { return newf(KindInvalidInput, format, args...) }
func InsufficientStock(format string, args ...any) *Error {
	return newf(KindInsufficientStock, format, args...)
}
func InsufficientPoints(format string, args ...any) *Error {
	return newf(KindInsufficientPoints, format, args...)
}
func InvalidState(format string, args ...any) *Error    { return newf(KindInvalidState, format, args...) }
func Unauthenticated(format string, args ...any) *Error { return newf(KindUnauthenticated, format, args...) }
func Forbidden(format string, args ...any) *Error       { return newf(KindForbidden, format, args...) }
func Conflict(format string, args ...any) *Error        { return newf(KindConflict, format, args...) }

// Wrap classifies err under kind with a message.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first classified error in err's chain,
// or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
