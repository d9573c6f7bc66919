package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/voco-chat/bridge/internal/apperr"
	"github.com/voco-chat/bridge/internal/auth"
	"github.com/voco-chat/bridge/internal/contract"
	"github.com/voco-chat/bridge/internal/domain"
)

type CreateMemberRequest struct {
	OperatorID domain.UserID          `json:"operatorId"`
	UserID     domain.UserID          `json:"userId"`
	ServerID   domain.ServerID        `json:"serverId"`
	Nickname   string                 `json:"nickname"`
	Preset     domain.PermissionLevel `json:"permissionLevel"`
}

type UpdateMemberRequest struct {
	OperatorID domain.UserID      `json:"operatorId"`
	UserID     domain.UserID      `json:"userId"`
	ServerID   domain.ServerID    `json:"serverId"`
	Patch      domain.MemberPatch `json:"patch"`
}

type DeleteMemberRequest struct {
	OperatorID domain.UserID   `json:"operatorId"`
	UserID     domain.UserID   `json:"userId"`
	ServerID   domain.ServerID `json:"serverId"`
}

func CreateMember(ctx context.Context, d Deps, req CreateMemberRequest) (*Bundle, error) {
	const part = apperr.PartCreateMember
	return boundary(part, func() (*Bundle, error) {
		server, err := d.DB.Server(ctx, req.ServerID)
		if notFound(err) {
			return nil, apperr.Validation(part, apperr.TagNotFound, "server not found")
		}
		if err != nil {
			return nil, err
		}
		if _, err := d.DB.Member(ctx, req.UserID, req.ServerID); err == nil {
			return nil, apperr.Validation(part, apperr.TagMemberExists, "member already exists")
		} else if !notFound(err) {
			return nil, err
		}
		operator, err := loadMember(ctx, d, req.OperatorID, req.ServerID)
		if err != nil {
			return nil, err
		}

		dec := auth.DecideMemberCreate(auth.MemberCreate{
			OperatorID: req.OperatorID,
			UserID:     req.UserID,
			Server:     server,
			Operator:   operator,
			Preset:     req.Preset,
		})
		if !dec.Allowed {
			return nil, apperr.Permission(part, dec.Tag, dec.Message)
		}

		member := domain.Member{
			UserID:          req.UserID,
			ServerID:        req.ServerID,
			Nickname:        req.Nickname,
			PermissionLevel: req.Preset,
			CreatedAt:       d.Now(),
		}
		if err := d.DB.SetMember(ctx, member); err != nil {
			return nil, err
		}
		log.Info().Str("module", "service.member").
			Str("operator", string(req.OperatorID)).Str("user", string(req.UserID)).
			Str("server", string(req.ServerID)).Int("level", int(req.Preset)).
			Msg("member created")

		return memberBundle(ctx, d, req.ServerID, &member)
	})
}

func UpdateMember(ctx context.Context, d Deps, req UpdateMemberRequest) (*Bundle, error) {
	const part = apperr.PartUpdateMember
	return boundary(part, func() (*Bundle, error) {
		target, err := d.DB.Member(ctx, req.UserID, req.ServerID)
		if notFound(err) {
			return nil, apperr.Validation(part, apperr.TagNotFound, "member not found")
		}
		if err != nil {
			return nil, err
		}
		operator, err := loadMember(ctx, d, req.OperatorID, req.ServerID)
		if err != nil {
			return nil, err
		}

		dec := auth.DecideMemberUpdate(auth.MemberUpdate{
			OperatorID: req.OperatorID,
			UserID:     req.UserID,
			Operator:   operator,
			Target:     target,
			Patch:      req.Patch,
		})
		if !dec.Allowed {
			return nil, apperr.Permission(part, dec.Tag, dec.Message)
		}

		target.Apply(req.Patch)
		if err := d.DB.SetMember(ctx, *target); err != nil {
			return nil, err
		}
		updated, err := d.DB.Member(ctx, req.UserID, req.ServerID)
		if err != nil {
			return nil, err
		}
		log.Info().Str("module", "service.member").
			Str("operator", string(req.OperatorID)).Str("user", string(req.UserID)).
			Str("server", string(req.ServerID)).Msg("member updated")

		return memberBundle(ctx, d, req.ServerID, updated)
	})
}

func DeleteMember(ctx context.Context, d Deps, req DeleteMemberRequest) (*Bundle, error) {
	const part = apperr.PartDeleteMember
	return boundary(part, func() (*Bundle, error) {
		target, err := d.DB.Member(ctx, req.UserID, req.ServerID)
		if notFound(err) {
			return nil, apperr.Validation(part, apperr.TagNotFound, "member not found")
		}
		if err != nil {
			return nil, err
		}
		operator, err := loadMember(ctx, d, req.OperatorID, req.ServerID)
		if err != nil {
			return nil, err
		}

		dec := auth.DecideMemberDelete(auth.MemberDelete{
			OperatorID: req.OperatorID,
			UserID:     req.UserID,
			Operator:   operator,
			Target:     target,
		})
		if !dec.Allowed {
			return nil, apperr.Permission(part, dec.Tag, dec.Message)
		}

		if err := d.DB.DeleteMember(ctx, req.UserID, req.ServerID); err != nil {
			return nil, err
		}
		log.Info().Str("module", "service.member").
			Str("operator", string(req.OperatorID)).Str("user", string(req.UserID)).
			Str("server", string(req.ServerID)).Msg("member deleted")

		return memberBundle(ctx, d, req.ServerID, nil)
	})
}

// loadMember returns the member record or nil when absent; only real
// storage failures propagate.
func loadMember(ctx context.Context, d Deps, userID domain.UserID, serverID domain.ServerID) (*domain.Member, error) {
	m, err := d.DB.Member(ctx, userID, serverID)
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// memberBundle reloads the aggregate view and builds the broadcast pair:
// the operator gets the refreshed member list, the target gets their own
// changed record (or the refreshed list after a removal).
func memberBundle(ctx context.Context, d Deps, serverID domain.ServerID, changed *domain.Member) (*Bundle, error) {
	members, err := d.DB.ServerMembers(ctx, serverID)
	if err != nil {
		return nil, err
	}
	primary := []Update{{
		Event:   contract.EventServerMemberUpdate,
		Payload: contract.ServerMemberUpdate{ServerID: serverID, Members: members},
	}}
	secondary := []Update{{
		Event:   contract.EventServerMemberUpdate,
		Payload: contract.ServerMemberUpdate{ServerID: serverID, Member: changed, Members: members},
	}}
	return &Bundle{Primary: primary, Secondary: secondary}, nil
}
