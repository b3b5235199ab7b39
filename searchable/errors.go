package searchable

import serrors "github.com/nonibytes/searchable/searchable/errors"

type (
	Error     = serrors.Error
	ErrorKind = serrors.ErrorKind
)

const (
	ErrConfiguration     = serrors.ErrConfiguration
	ErrInternalInvariant = serrors.ErrInternalInvariant
	ErrSQL               = serrors.ErrSQL
	ErrIO                = serrors.ErrIO
)

func Wrap(kind ErrorKind, msg string, cause error) *Error {
	return serrors.Wrap(kind, msg, cause)
}

func ConfigurationError(entity, msg string) *Error {
	return serrors.ConfigurationError(entity, msg)
}

func ConfigurationErrorf(entity, format string, args ...any) *Error {
	return serrors.ConfigurationErrorf(entity, format, args...)
}

func InternalInvariantError(msg string) *Error {
	return serrors.InternalInvariantError(msg)
}

func IsKind(err error, kind ErrorKind) bool {
	return serrors.IsKind(err, kind)
}
