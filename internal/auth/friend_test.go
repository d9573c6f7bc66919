package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voco-chat/bridge/internal/apperr"
	"github.com/voco-chat/bridge/internal/domain"
)

func TestDecideFriendCreate(t *testing.T) {
	tests := []struct {
		name    string
		req     FriendCreate
		allowed bool
		wantTag string
	}{
		{
			name:    "new friendship",
			req:     FriendCreate{OperatorID: "a", UserID: "a", TargetID: "b"},
			allowed: true,
		},
		{
			name: "edge already exists",
			req: FriendCreate{
				OperatorID: "a", UserID: "a", TargetID: "b",
				Existing: &domain.Friend{UserID: "a", TargetID: "b"},
			},
			wantTag: apperr.TagFriendExists,
		},
		{
			name:    "on someone else's behalf",
			req:     FriendCreate{OperatorID: "a", UserID: "b", TargetID: "c"},
			wantTag: apperr.TagPermissionDenied,
		},
		{
			name:    "self-friending",
			req:     FriendCreate{OperatorID: "a", UserID: "a", TargetID: "a"},
			wantTag: apperr.TagPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := DecideFriendCreate(tt.req)
			if tt.allowed {
				require.True(t, dec.Allowed, dec.Message)
				return
			}
			require.False(t, dec.Allowed)
			assert.Equal(t, tt.wantTag, dec.Tag)
		})
	}
}

func TestDecideFriendUpdateDelete(t *testing.T) {
	assert.True(t, DecideFriendUpdate(FriendUpdate{OperatorID: "a", UserID: "a", TargetID: "b"}).Allowed)
	assert.False(t, DecideFriendUpdate(FriendUpdate{OperatorID: "a", UserID: "b", TargetID: "c"}).Allowed)

	assert.True(t, DecideFriendDelete(FriendDelete{OperatorID: "a", UserID: "a", TargetID: "b"}).Allowed)
	assert.False(t, DecideFriendDelete(FriendDelete{OperatorID: "a", UserID: "b", TargetID: "a"}).Allowed)
}
