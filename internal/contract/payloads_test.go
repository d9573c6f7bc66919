package contract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voco-chat/bridge/internal/apperr"
	"github.com/voco-chat/bridge/internal/domain"
)

func TestDecodeServerEvent(t *testing.T) {
	got, err := DecodeServerEvent(EventDirectMessage,
		json.RawMessage(`{"senderId":"a","receiverId":"b","content":"hi"}`))
	require.NoError(t, err)
	dm, ok := got.(DirectMessage)
	require.True(t, ok)
	assert.Equal(t, domain.UserID("a"), dm.PeerID())
	assert.Equal(t, "hi", dm.Content)

	got, err = DecodeServerEvent(EventError,
		json.RawMessage(`{"name":"PermissionError","tag":"PERMISSION_DENIED","statusCode":403}`))
	require.NoError(t, err)
	env, ok := got.(apperr.Envelope)
	require.True(t, ok)
	assert.Equal(t, apperr.TagPermissionDenied, env.Tag)
}

func TestDecodeServerEventRejectsUnknownName(t *testing.T) {
	_, err := DecodeServerEvent("renamePlanet", json.RawMessage(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "renamePlanet")
}

func TestDecodeServerEventCoversRegisteredEvents(t *testing.T) {
	for _, name := range ServerEvents {
		_, err := DecodeServerEvent(name, nil)
		assert.NoError(t, err, "event %s", name)
	}
}
