package auth

import (
	"github.com/voco-chat/bridge/internal/apperr"
	"github.com/voco-chat/bridge/internal/domain"
)

// Friend mutation rules. Friend edges are always owned by the acting
// user: nobody creates, edits or deletes a friendship on someone else's
// behalf.

// FriendCreate is the context for creating a friendship. Existing is the
// already-loaded forward edge, nil if absent.
type FriendCreate struct {
	OperatorID domain.UserID
	UserID     domain.UserID
	TargetID   domain.UserID
	Existing   *domain.Friend
}

func DecideFriendCreate(r FriendCreate) Decision {
	if r.Existing != nil {
		return Deny(apperr.TagFriendExists, "friendship already exists")
	}
	if r.OperatorID != r.UserID {
		return Deny(apperr.TagPermissionDenied, "cannot create a friendship for another user")
	}
	if r.UserID == r.TargetID {
		return Deny(apperr.TagPermissionDenied, "cannot friend yourself")
	}
	return Allow()
}

type FriendUpdate struct {
	OperatorID domain.UserID
	UserID     domain.UserID
	TargetID   domain.UserID
}

func DecideFriendUpdate(r FriendUpdate) Decision {
	if r.OperatorID != r.UserID {
		return Deny(apperr.TagPermissionDenied, "cannot update another user's friendship")
	}
	return Allow()
}

type FriendDelete struct {
	OperatorID domain.UserID
	UserID     domain.UserID
	TargetID   domain.UserID
}

func DecideFriendDelete(r FriendDelete) Decision {
	if r.OperatorID != r.UserID {
		return Deny(apperr.TagPermissionDenied, "cannot delete another user's friendship")
	}
	return Allow()
}
