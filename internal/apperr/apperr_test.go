package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	v := Validation(PartCreateMember, TagDataInvalid, "bad input")
	assert.Equal(t, NameValidation, v.Name)
	assert.Equal(t, 400, v.StatusCode)

	p := Permission(PartUpdateMember, TagPermissionDenied, "no")
	assert.Equal(t, NamePermission, p.Name)
	assert.Equal(t, 403, p.StatusCode)

	s := Server(PartDeleteFriend, TagExceptionError, "boom")
	assert.Equal(t, NameServer, s.Name)
	assert.Equal(t, 500, s.StatusCode)
}

func TestCoercePassesEnvelopesThrough(t *testing.T) {
	orig := Permission(PartUpdateMember, TagPermissionTooHigh, "no")
	got := Coerce(PartHandler, orig)
	assert.Same(t, orig, got)

	wrapped := fmt.Errorf("context: %w", orig)
	got = Coerce(PartHandler, wrapped)
	assert.Same(t, orig, got)
}

func TestCoerceWrapsUnknownErrors(t *testing.T) {
	got := Coerce(PartCreateFriend, errors.New("connection reset"))
	require.NotNil(t, got)
	assert.Equal(t, NameServer, got.Name)
	assert.Equal(t, TagExceptionError, got.Tag)
	assert.Equal(t, PartCreateFriend, got.Part)
	assert.Contains(t, got.Message, "connection reset")
}

func TestCoerceNil(t *testing.T) {
	assert.Nil(t, Coerce(PartHandler, nil))
}
