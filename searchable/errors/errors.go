package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorKind string

const (
	ErrConfiguration     ErrorKind = "configuration"
	ErrInternalInvariant ErrorKind = "internal_invariant"
	ErrSQL               ErrorKind = "sql"
	ErrIO                ErrorKind = "io"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Entity  string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Entity != "" {
		base = fmt.Sprintf("%s (entity=%s)", base, e.Entity)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func New(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// ConfigurationError reports a searchable description that cannot produce a
// query. It is raised while building, never at execution time.
func ConfigurationError(entity, msg string) *Error {
	return &Error{Kind: ErrConfiguration, Entity: entity, Message: msg}
}

func ConfigurationErrorf(entity, format string, args ...any) *Error {
	return ConfigurationError(entity, fmt.Sprintf(format, args...))
}

// InternalInvariantError reports a defect in SQL synthesis, such as a
// placeholder count that disagrees with the bindings collected for it.
func InternalInvariantError(msg string) *Error {
	return &Error{Kind: ErrInternalInvariant, Message: msg}
}

func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
