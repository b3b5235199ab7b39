package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := ConfigurationError("posts", "no searchable columns configured")
	assert.Equal(t, "configuration: no searchable columns configured (entity=posts)", err.Error())

	wrapped := Wrap(ErrSQL, "execute search", stderrors.New("boom"))
	assert.Equal(t, "sql: execute search: boom", wrapped.Error())
}

func TestIsKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("build: %w", InternalInvariantError("2 placeholders, 1 binding"))
	assert.True(t, IsKind(err, ErrInternalInvariant))
	assert.False(t, IsKind(err, ErrConfiguration))
	assert.False(t, IsKind(stderrors.New("plain"), ErrConfiguration))
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrIO, "connect", cause)
	assert.ErrorIs(t, err, cause)
}
