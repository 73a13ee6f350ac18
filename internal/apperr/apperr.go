// Package apperr defines the error taxonomy shared by the service packages and
// the action endpoint.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for response shaping and retry decisions.
type Kind int

// Kind constants.
const (
	// KindStorage marks a backing store failure. Never shown verbatim to callers.
	KindStorage Kind = iota
	// KindValidation marks malformed or missing input.
	KindValidation
	// KindAuth marks bad credentials or an invalid/expired session.
	KindAuth
	// KindForbidden marks a valid session lacking the required role.
	KindForbidden
	// KindRateLimited marks a caller that must wait for the window to elapse.
	KindRateLimited
	// KindConflict marks a state or uniqueness conflict.
	KindConflict
	// KindNotFound marks a missing resource.
	KindNotFound
)

// String returns the stable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindRateLimited:
		return "rate_limited"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "storage"
	}
}

// Error is a classified error with a stable code and a caller-safe message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

// Unwrap exposes the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches errors by kind and code so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// New builds a classified error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation builds a validation error.
func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

// NotFound builds a not-found error.
func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

// Conflict builds a conflict error.
func Conflict(code, message string) *Error {
	return New(KindConflict, code, message)
}

// Storage wraps a backing store failure. The message never carries driver text;
// the cause stays reachable for logging.
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Code: "storage_error", Message: op + " failed", Err: err}
}

// KindOf returns the kind of err, defaulting to KindStorage for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// Shared errors used by more than one package.
var (
	// ErrInvalidSession reports a missing, unknown, or expired session token.
	ErrInvalidSession = New(KindAuth, "invalid_session", "invalid or expired session")
	// ErrAccessDenied reports a valid session without admin role.
	ErrAccessDenied = New(KindForbidden, "access_denied", "access denied, administrators only")
	// ErrMissingAuthorization reports a request without a bearer token.
	ErrMissingAuthorization = New(KindAuth, "missing_authorization", "authorization token required")
	// ErrExhaustedCodeSpace reports that a unique random code could not be found.
	ErrExhaustedCodeSpace = New(KindConflict, "exhausted_code_space", "could not generate a unique code, try again")
)
