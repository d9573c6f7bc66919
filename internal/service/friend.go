package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/voco-chat/bridge/internal/apperr"
	"github.com/voco-chat/bridge/internal/auth"
	"github.com/voco-chat/bridge/internal/contract"
	"github.com/voco-chat/bridge/internal/domain"
)

type CreateFriendRequest struct {
	OperatorID domain.UserID      `json:"operatorId"`
	UserID     domain.UserID      `json:"userId"`
	TargetID   domain.UserID      `json:"targetId"`
	Preset     domain.FriendPatch `json:"preset"`
}

type UpdateFriendRequest struct {
	OperatorID domain.UserID      `json:"operatorId"`
	UserID     domain.UserID      `json:"userId"`
	TargetID   domain.UserID      `json:"targetId"`
	Patch      domain.FriendPatch `json:"patch"`
}

type DeleteFriendRequest struct {
	OperatorID domain.UserID `json:"operatorId"`
	UserID     domain.UserID `json:"userId"`
	TargetID   domain.UserID `json:"targetId"`
}

func CreateFriend(ctx context.Context, d Deps, req CreateFriendRequest) (*Bundle, error) {
	const part = apperr.PartCreateFriend
	return boundary(part, func() (*Bundle, error) {
		existing, err := d.DB.Friend(ctx, req.UserID, req.TargetID)
		if err != nil && !notFound(err) {
			return nil, err
		}

		dec := auth.DecideFriendCreate(auth.FriendCreate{
			OperatorID: req.OperatorID,
			UserID:     req.UserID,
			TargetID:   req.TargetID,
			Existing:   existing,
		})
		if !dec.Allowed {
			return nil, apperr.Permission(part, dec.Tag, dec.Message)
		}

		now := d.Now()
		forward := domain.Friend{UserID: req.UserID, TargetID: req.TargetID, CreatedAt: now}
		forward.Apply(req.Preset)
		reverse := domain.Friend{UserID: req.TargetID, TargetID: req.UserID, CreatedAt: now}
		reverse.Apply(req.Preset)

		// Both directed edges or neither. A failed second insert rolls the
		// first back and surfaces as a server error.
		if err := d.DB.SetFriend(ctx, forward); err != nil {
			return nil, err
		}
		if err := d.DB.SetFriend(ctx, reverse); err != nil {
			if delErr := d.DB.DeleteFriend(ctx, req.UserID, req.TargetID); delErr != nil {
				log.Error().Err(delErr).Str("module", "service.friend").Msg("rollback of forward edge failed")
			}
			return nil, fmt.Errorf("reverse edge insert failed: %w", err)
		}
		log.Info().Str("module", "service.friend").
			Str("user", string(req.UserID)).Str("target", string(req.TargetID)).
			Msg("friendship created")

		return friendBundle(ctx, d, req.UserID, req.TargetID, &forward, &reverse)
	})
}

func UpdateFriend(ctx context.Context, d Deps, req UpdateFriendRequest) (*Bundle, error) {
	const part = apperr.PartUpdateFriend
	return boundary(part, func() (*Bundle, error) {
		dec := auth.DecideFriendUpdate(auth.FriendUpdate{
			OperatorID: req.OperatorID,
			UserID:     req.UserID,
			TargetID:   req.TargetID,
		})
		if !dec.Allowed {
			return nil, apperr.Permission(part, dec.Tag, dec.Message)
		}

		edge, err := d.DB.Friend(ctx, req.UserID, req.TargetID)
		if notFound(err) {
			return nil, apperr.Validation(part, apperr.TagNotFound, "friendship not found")
		}
		if err != nil {
			return nil, err
		}

		// Only the operator's own directed edge changes.
		edge.Apply(req.Patch)
		if err := d.DB.SetFriend(ctx, *edge); err != nil {
			return nil, err
		}
		log.Info().Str("module", "service.friend").
			Str("user", string(req.UserID)).Str("target", string(req.TargetID)).
			Msg("friendship updated")

		friends, err := d.DB.UserFriends(ctx, req.UserID)
		if err != nil {
			return nil, err
		}
		primary := []Update{{
			Event:   contract.EventFriendUpdate,
			Payload: contract.FriendUpdate{UserID: req.UserID, Friend: edge, Friends: friends},
		}}
		return &Bundle{Primary: primary}, nil
	})
}

func DeleteFriend(ctx context.Context, d Deps, req DeleteFriendRequest) (*Bundle, error) {
	const part = apperr.PartDeleteFriend
	return boundary(part, func() (*Bundle, error) {
		dec := auth.DecideFriendDelete(auth.FriendDelete{
			OperatorID: req.OperatorID,
			UserID:     req.UserID,
			TargetID:   req.TargetID,
		})
		if !dec.Allowed {
			return nil, apperr.Permission(part, dec.Tag, dec.Message)
		}

		if _, err := d.DB.Friend(ctx, req.UserID, req.TargetID); notFound(err) {
			return nil, apperr.Validation(part, apperr.TagNotFound, "friendship not found")
		} else if err != nil {
			return nil, err
		}

		// Symmetric removal of both directed edges.
		if err := d.DB.DeleteFriend(ctx, req.UserID, req.TargetID); err != nil {
			return nil, err
		}
		if err := d.DB.DeleteFriend(ctx, req.TargetID, req.UserID); err != nil {
			return nil, err
		}
		log.Info().Str("module", "service.friend").
			Str("user", string(req.UserID)).Str("target", string(req.TargetID)).
			Msg("friendship deleted")

		return friendBundle(ctx, d, req.UserID, req.TargetID, nil, nil)
	})
}

// friendBundle reloads both users' friend lists and pairs the deltas:
// operator first, target second.
func friendBundle(ctx context.Context, d Deps, userID, targetID domain.UserID, forward, reverse *domain.Friend) (*Bundle, error) {
	userFriends, err := d.DB.UserFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	targetFriends, err := d.DB.UserFriends(ctx, targetID)
	if err != nil {
		return nil, err
	}
	primary := []Update{{
		Event:   contract.EventFriendUpdate,
		Payload: contract.FriendUpdate{UserID: userID, Friend: forward, Friends: userFriends},
	}}
	secondary := []Update{{
		Event:   contract.EventFriendUpdate,
		Payload: contract.FriendUpdate{UserID: targetID, Friend: reverse, Friends: targetFriends},
	}}
	return &Bundle{Primary: primary, Secondary: secondary}, nil
}
