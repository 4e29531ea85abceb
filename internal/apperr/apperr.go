package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every error the engine returns to a caller.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindNotOpenYet           Kind = "not_open_yet"
	KindAlreadyClosed        Kind = "already_closed"
	KindAlreadyAttempted     Kind = "already_attempted"
	KindMissingResponseField Kind = "missing_response_field"
	KindTypeMismatch         Kind = "type_mismatch"
	KindMarkOutOfRange       Kind = "mark_out_of_range"
	KindUnauthorized         Kind = "unauthorized"
	KindPersistence          Kind = "persistence_failure"
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a validation-style error with no underlying cause.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error, typically a store failure.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from any error in the chain; unknown errors are
// reported as persistence failures so nothing is silently swallowed.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

func Is(err error, kind Kind) bool { return KindOf(err) == kind }

// HTTPStatus maps an error kind to the wire status used by the controllers.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindNotOpenYet, KindAlreadyClosed, KindAlreadyAttempted:
		return http.StatusConflict
	case KindMissingResponseField, KindTypeMismatch, KindMarkOutOfRange:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
