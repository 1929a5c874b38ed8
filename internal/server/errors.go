package server

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine errors into the four recoverable families the
// HTTP layer maps onto statuses.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindAuthorization
	KindConflict
	KindNotFound
)

type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func errValidation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func errAuthorization(format string, args ...any) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func errConflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func errNotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the engine kind of err, or false for infrastructure errors.
func KindOf(err error) (ErrorKind, bool) {
	var engineErr *Error
	if errors.As(err, &engineErr) {
		return engineErr.Kind, true
	}
	return 0, false
}
