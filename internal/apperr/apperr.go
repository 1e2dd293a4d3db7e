package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies every failure a mutation can produce. Handlers map kinds to
// HTTP statuses and clients branch on the kind string, so no kind is ever
// collapsed into another.
type Kind string

const (
	KindValidation        Kind = "VALIDATION"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindDependency        Kind = "DEPENDENCY_FAILURE"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransition(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Dependency wraps a failed call to an external collaborator (storage, catalog,
// search). The cause is preserved for logging but the caller only sees the kind.
func Dependency(err error, format string, args ...interface{}) error {
	return &Error{Kind: KindDependency, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
