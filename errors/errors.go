package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

// Error is the structured form every failure surfaces in: a kind for the
// caller to branch on and a message safe to return verbatim.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error of the same Kind, so the sentinels below work with
// errors.Is regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !stderrors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrUserAlreadyExists  = &Error{Kind: KindConflict, Message: "username already taken"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Message: "invalid username/password"}
	ErrInvalidToken       = &Error{Kind: KindUnauthorized, Message: "missing or invalid token"}
	ErrForbidden          = &Error{Kind: KindForbidden, Message: "insufficient rights"}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Message: "user not found"}
	ErrMessageNotFound    = &Error{Kind: KindNotFound, Message: "message not found"}
	ErrInternal           = &Error{Kind: KindInternal, Message: "internal error"}
	ErrEmptyWords         = &Error{Kind: KindValidation, Message: "no censor words have been provided"}
)

// Validation builds a ValidationError with a caller-facing message.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps a store or transport failure into the transient Internal kind.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: err.Error()}
}

// KindOf extracts the Kind of err, defaulting to Internal for anything
// that is not a structured *Error.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
