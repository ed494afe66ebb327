// Package apperror defines the error kinds surfaced by services and the
// message carried with each of them.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindPersistence Kind = iota
	KindValidation
	KindDuplicateEmail
	KindWeakPassword
	KindInvalidEmail
	KindIncompleteOrder
	KindInvalidStatus
	KindInvalidCredentials
	KindUnauthenticated
	KindTokenInvalid
	KindTokenExpired
	KindForbidden
	KindNotFound
	KindRateLimited
)

var kindNames = map[Kind]string{
	KindPersistence:        "PersistenceFailure",
	KindValidation:         "ValidationError",
	KindDuplicateEmail:     "DuplicateEmail",
	KindWeakPassword:       "WeakPassword",
	KindInvalidEmail:       "InvalidEmail",
	KindIncompleteOrder:    "IncompleteOrder",
	KindInvalidStatus:      "InvalidStatus",
	KindInvalidCredentials: "InvalidCredentials",
	KindUnauthenticated:    "Unauthenticated",
	KindTokenInvalid:       "TokenInvalid",
	KindTokenExpired:       "TokenExpired",
	KindForbidden:          "Forbidden",
	KindNotFound:           "NotFound",
	KindRateLimited:        "RateLimited",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a classified error. Message is safe to show to clients; Err holds
// the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New returns an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to a classified error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Persistence wraps an unexpected store error.
func Persistence(message string, err error) *Error {
	return Wrap(KindPersistence, message, err)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by kind and message, so a wrapped copy of a
// package-level sentinel still satisfies errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// KindOf reports the kind of err. Unclassified errors are persistence failures.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindPersistence
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// MessageOf returns the client-facing message for err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
