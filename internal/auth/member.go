package auth

import (
	"github.com/voco-chat/bridge/internal/apperr"
	"github.com/voco-chat/bridge/internal/domain"
)

// Member mutation rules. Rules run in order and the first failing rule
// wins. The thresholds are deliberately not symmetric between the
// similar-looking branches; each branch encodes its own product policy
// and must not be collapsed into a shared check.

// MemberCreate is the context for creating a member record.
// Operator is the acting user's own member record on the server, nil if
// the operator is not (yet) a member.
type MemberCreate struct {
	OperatorID domain.UserID
	UserID     domain.UserID
	Server     *domain.Server
	Operator   *domain.Member
	Preset     domain.PermissionLevel
}

func DecideMemberCreate(r MemberCreate) Decision {
	if r.OperatorID != r.UserID {
		if r.Operator == nil || r.Operator.PermissionLevel < domain.ServerAdmin {
			return Deny(apperr.TagPermissionDenied, "insufficient permission to create a member")
		}
		if r.Preset >= r.Operator.PermissionLevel {
			return Deny(apperr.TagPermissionTooHigh, "cannot create a member at or above your own level")
		}
		if r.Preset > domain.ServerAdmin {
			return Deny(apperr.TagPermissionTooHigh, "cannot create a member above server admin")
		}
		return Allow()
	}

	// Self-join: guests only, except the server owner joins as owner.
	if r.Server != nil && r.Server.OwnerID == r.OperatorID {
		if r.Preset != domain.ServerOwner {
			return Deny(apperr.TagPermissionDenied, "server owner must join at owner level")
		}
		return Allow()
	}
	if r.Preset != domain.Guest {
		return Deny(apperr.TagPermissionDenied, "self-join is limited to guest level")
	}
	return Allow()
}

// MemberUpdate is the context for updating an existing member record.
type MemberUpdate struct {
	OperatorID domain.UserID
	UserID     domain.UserID
	Operator   *domain.Member
	Target     *domain.Member
	Patch      domain.MemberPatch
}

func DecideMemberUpdate(r MemberUpdate) Decision {
	if r.OperatorID == r.UserID {
		// Self permission changes are always denied; anything else on
		// your own record is fine.
		if r.Target != nil && r.Patch.ChangesLevel(r.Target.PermissionLevel) {
			return Deny(apperr.TagPermissionDenied, "cannot change your own permission level")
		}
		return Allow()
	}

	if r.Operator == nil || r.Operator.PermissionLevel < domain.ChannelMod {
		return Deny(apperr.TagPermissionDenied, "insufficient permission to update a member")
	}
	if r.Target == nil || r.Operator.PermissionLevel <= r.Target.PermissionLevel {
		return Deny(apperr.TagPermissionDenied, "cannot update a member at or above your own level")
	}
	if r.Target.PermissionLevel > domain.ServerAdmin {
		return Deny(apperr.TagPermissionDenied, "cannot update the server owner")
	}
	if r.Target.PermissionLevel == domain.Guest && r.Patch.ChangesLevel(r.Target.PermissionLevel) &&
		r.Operator.PermissionLevel < domain.ServerAdmin {
		return Deny(apperr.TagPermissionDenied, "promoting a guest requires server admin")
	}
	if r.Patch.PermissionLevel != nil && *r.Patch.PermissionLevel == domain.Guest &&
		r.Operator.PermissionLevel < domain.ServerAdmin {
		return Deny(apperr.TagPermissionDenied, "demoting to guest requires server admin")
	}
	if r.Patch.Nickname != nil && r.Operator.PermissionLevel < domain.ServerAdmin {
		return Deny(apperr.TagPermissionDenied, "changing another member's nickname requires server admin")
	}
	if r.Patch.PermissionLevel != nil {
		if *r.Patch.PermissionLevel >= r.Operator.PermissionLevel {
			return Deny(apperr.TagPermissionTooHigh, "cannot grant a level at or above your own")
		}
		if *r.Patch.PermissionLevel > domain.ServerAdmin {
			return Deny(apperr.TagPermissionTooHigh, "cannot grant a level above server admin")
		}
	}
	return Allow()
}

// MemberDelete is the context for removing a member record.
type MemberDelete struct {
	OperatorID domain.UserID
	UserID     domain.UserID
	Operator   *domain.Member
	Target     *domain.Member
}

func DecideMemberDelete(r MemberDelete) Decision {
	if r.OperatorID == r.UserID {
		// Leaving a server goes through a separate path, never this one.
		return Deny(apperr.TagPermissionDenied, "members cannot delete themselves")
	}
	if r.Operator == nil || r.Operator.PermissionLevel < domain.ChannelMod {
		return Deny(apperr.TagPermissionDenied, "insufficient permission to remove a member")
	}
	if r.Target == nil || r.Operator.PermissionLevel <= r.Target.PermissionLevel {
		return Deny(apperr.TagPermissionDenied, "cannot remove a member at or above your own level")
	}
	if r.Target.PermissionLevel > domain.ServerAdmin {
		return Deny(apperr.TagPermissionDenied, "cannot remove the server owner")
	}
	return Allow()
}
