// Package contract is the closed event vocabulary spoken over the bridge:
// every client→server and server→client event name, its payload shape,
// and the framing used on the wire. No behavior lives here.
package contract

import "encoding/json"

// Client→server, fire-and-forget.
const (
	EventCreateServer            = "createServer"
	EventEditServer              = "editServer"
	EventDeleteServer            = "deleteServer"
	EventCreateChannel           = "createChannel"
	EventEditChannel             = "editChannel"
	EventDeleteChannel           = "deleteChannel"
	EventConnectChannel          = "connectChannel"
	EventDisconnectChannel       = "disconnectChannel"
	EventCreateMember            = "createMember"
	EventEditMember              = "editMember"
	EventDeleteMember            = "deleteMember"
	EventCreateFriend            = "createFriend"
	EventEditFriend              = "editFriend"
	EventDeleteFriend            = "deleteFriend"
	EventSendFriendApplication   = "sendFriendApplication"
	EventEditFriendApplication   = "editFriendApplication"
	EventDeleteFriendApplication = "deleteFriendApplication"
	EventSendDirectMessage       = "directMessage"
	EventSendShakeWindow         = "shakeWindow"
)

// Client→server, acknowledgment required. Media-transport setup needs a
// returned value, so these go through Request rather than Send.
const (
	EventSFUJoin             = "SFUJoin"
	EventSFULeave            = "SFULeave"
	EventSFUCreateTransport  = "SFUCreateTransport"
	EventSFUConnectTransport = "SFUConnectTransport"
	EventSFUCreateProducer   = "SFUCreateProducer"
	EventSFUCreateConsumer   = "SFUCreateConsumer"
)

// Server→client.
const (
	EventUserUpdate              = "userUpdate"
	EventServerUpdate            = "serverUpdate"
	EventServerMemberUpdate      = "serverMemberUpdate"
	EventChannelUpdate           = "channelUpdate"
	EventFriendUpdate            = "friendUpdate"
	EventFriendApplicationAdd    = "friendApplicationAdd"
	EventFriendApplicationUpdate = "friendApplicationUpdate"
	EventFriendApplicationRemove = "friendApplicationRemove"
	EventDirectMessage           = "directMessage"
	EventShakeWindow             = "shakeWindow"
	EventOpenPopup               = "openPopup"
	EventError                   = "error"
)

// Bridge-local pseudo events, published to observers but never framed on
// the wire by the client.
const (
	EventConnect        = "connect"
	EventDisconnect     = "disconnect"
	EventConnectError   = "connect_error"
	EventReconnectError = "reconnect_error"
	EventHeartbeat      = "heartbeat"
)

// ServerEvents is the full inbound handler set the bridge registers on
// every (re)connect. Order is the registration order.
var ServerEvents = []string{
	EventUserUpdate,
	EventServerUpdate,
	EventServerMemberUpdate,
	EventChannelUpdate,
	EventFriendUpdate,
	EventFriendApplicationAdd,
	EventFriendApplicationUpdate,
	EventFriendApplicationRemove,
	EventDirectMessage,
	EventShakeWindow,
	EventOpenPopup,
	EventError,
}

// Frame is the wire envelope. Seq is zero for fire-and-forget events and
// strictly increasing for acknowledged requests and heartbeats.
type Frame struct {
	Type string          `json:"type"`
	Seq  uint64          `json:"seq,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Wire-level frame types that are not contract events.
const (
	FrameAck          = "ack"
	FrameHeartbeat    = "heartbeat"
	FrameHeartbeatAck = "heartbeatAck"
)

// Ack is the acknowledgment envelope for a Request. OK=false maps to a
// rejected result on the caller side.
type Ack struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Heartbeat payloads. Latency is derived client-side as now − sendTime.
type HeartbeatPing struct {
	Seq uint64 `json:"seq"`
}

type HeartbeatPong struct {
	Seq uint64 `json:"seq"`
	T   int64  `json:"t"`
}

type HeartbeatReport struct {
	Seq     uint64 `json:"seq"`
	Latency int64  `json:"latency"`
}
