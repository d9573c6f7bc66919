package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/voco-chat/bridge/internal/apperr"
	"github.com/voco-chat/bridge/internal/contract"
	"github.com/voco-chat/bridge/internal/domain"
	"github.com/voco-chat/bridge/internal/router"
)

// Sender forwards a mutation intent to the backend, fire-and-forget.
type Sender interface {
	Send(event string, payload any)
}

// Dispatcher is the outermost mutation handler. It decodes an intent,
// runs the matching service against the local replica, forwards the
// intent upstream and loops the operator-facing deltas back through the
// router. Target-facing deltas arrive from the backend on its own push
// path, so only Primary is looped back here.
//
// Every failure leaves as a single `error` event on the local router;
// no delta is published for a failed mutation.
type Dispatcher struct {
	Deps   Deps
	Router *router.Router
	Sender Sender
}

// Dispatch handles one mutation intent from a local surface. The
// operator identity comes from the session, never from the payload.
func (h *Dispatcher) Dispatch(ctx context.Context, operator domain.UserID, event string, data json.RawMessage) {
	bundle, err := h.run(ctx, operator, event, data)
	if err != nil {
		env := apperr.Coerce(apperr.PartHandler, err)
		log.Warn().Str("module", "service.dispatch").Str("event", event).
			Str("part", env.Part).Str("tag", env.Tag).Msg(env.Message)
		h.Router.Publish(contract.EventError, env)
		return
	}
	h.Sender.Send(event, json.RawMessage(data))
	for _, u := range bundle.Primary {
		h.Router.Publish(u.Event, u.Payload)
	}
}

func (h *Dispatcher) run(ctx context.Context, operator domain.UserID, event string, data json.RawMessage) (*Bundle, error) {
	switch event {
	case contract.EventCreateMember:
		req, err := decodeIntent[CreateMemberRequest](event, data)
		if err != nil {
			return nil, err
		}
		req.OperatorID = operator
		return CreateMember(ctx, h.Deps, req)
	case contract.EventEditMember:
		req, err := decodeIntent[UpdateMemberRequest](event, data)
		if err != nil {
			return nil, err
		}
		req.OperatorID = operator
		return UpdateMember(ctx, h.Deps, req)
	case contract.EventDeleteMember:
		req, err := decodeIntent[DeleteMemberRequest](event, data)
		if err != nil {
			return nil, err
		}
		req.OperatorID = operator
		return DeleteMember(ctx, h.Deps, req)
	case contract.EventCreateFriend:
		req, err := decodeIntent[CreateFriendRequest](event, data)
		if err != nil {
			return nil, err
		}
		req.OperatorID = operator
		return CreateFriend(ctx, h.Deps, req)
	case contract.EventEditFriend:
		req, err := decodeIntent[UpdateFriendRequest](event, data)
		if err != nil {
			return nil, err
		}
		req.OperatorID = operator
		return UpdateFriend(ctx, h.Deps, req)
	case contract.EventDeleteFriend:
		req, err := decodeIntent[DeleteFriendRequest](event, data)
		if err != nil {
			return nil, err
		}
		req.OperatorID = operator
		return DeleteFriend(ctx, h.Deps, req)
	default:
		return nil, apperr.Validation(apperr.PartHandler, apperr.TagDataInvalid, "unknown mutation intent "+event)
	}
}

func decodeIntent[T any](event string, data json.RawMessage) (T, error) {
	var req T
	if err := json.Unmarshal(data, &req); err != nil {
		return req, apperr.Validation(apperr.PartHandler, apperr.TagDataInvalid, "malformed payload for "+event)
	}
	return req, nil
}
