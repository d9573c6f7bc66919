package contract

import (
	"encoding/json"
	"fmt"

	"github.com/voco-chat/bridge/internal/apperr"
	"github.com/voco-chat/bridge/internal/domain"
)

// Inbound payload shapes, one per server→client event.

type UserUpdate struct {
	User domain.User `json:"user"`
}

type ServerUpdate struct {
	Server domain.Server `json:"server"`
}

// ServerMemberUpdate carries either a single changed member, the full
// member list of a server, or both, depending on what the mutation touched.
type ServerMemberUpdate struct {
	ServerID domain.ServerID `json:"serverId"`
	Member   *domain.Member  `json:"member,omitempty"`
	Members  []domain.Member `json:"members,omitempty"`
}

type ChannelUpdate struct {
	Channel domain.Channel `json:"channel"`
}

type FriendUpdate struct {
	UserID  domain.UserID   `json:"userId"`
	Friend  *domain.Friend  `json:"friend,omitempty"`
	Friends []domain.Friend `json:"friends,omitempty"`
}

type FriendApplication struct {
	SenderID   domain.UserID `json:"senderId"`
	ReceiverID domain.UserID `json:"receiverId"`
	Message    string        `json:"message"`
}

type DirectMessage struct {
	SenderID   domain.UserID `json:"senderId"`
	ReceiverID domain.UserID `json:"receiverId"`
	Content    string        `json:"content"`
}

type ShakeWindow struct {
	SenderID   domain.UserID `json:"senderId"`
	ReceiverID domain.UserID `json:"receiverId"`
}

type OpenPopup struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// PeerID identifies the other participant for events that must open a
// conversation surface regardless of focus.
func (d DirectMessage) PeerID() domain.UserID { return d.SenderID }
func (s ShakeWindow) PeerID() domain.UserID   { return s.SenderID }

// DecodeServerEvent maps an inbound event name to its typed payload.
// The switch is exhaustive over ServerEvents; an unlisted name is a
// contract violation, not a silent passthrough.
func DecodeServerEvent(name string, data json.RawMessage) (any, error) {
	switch name {
	case EventUserUpdate:
		return decode[UserUpdate](data)
	case EventServerUpdate:
		return decode[ServerUpdate](data)
	case EventServerMemberUpdate:
		return decode[ServerMemberUpdate](data)
	case EventChannelUpdate:
		return decode[ChannelUpdate](data)
	case EventFriendUpdate:
		return decode[FriendUpdate](data)
	case EventFriendApplicationAdd, EventFriendApplicationUpdate, EventFriendApplicationRemove:
		return decode[FriendApplication](data)
	case EventDirectMessage:
		return decode[DirectMessage](data)
	case EventShakeWindow:
		return decode[ShakeWindow](data)
	case EventOpenPopup:
		return decode[OpenPopup](data)
	case EventError:
		return decode[apperr.Envelope](data)
	default:
		return nil, fmt.Errorf("unknown server event %q", name)
	}
}

func decode[T any](data json.RawMessage) (T, error) {
	var v T
	if len(data) == 0 {
		return v, nil
	}
	err := json.Unmarshal(data, &v)
	return v, err
}
