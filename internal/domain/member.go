package domain

import "time"

// PermissionLevel is the ordinal rank a member holds on one server.
// Everything the authorization rules decide is a comparison on this scale.
type PermissionLevel int

const (
	Guest        PermissionLevel = 1
	MemberLevel  PermissionLevel = 2
	ChannelMod   PermissionLevel = 3
	ChannelAdmin PermissionLevel = 4
	ServerAdmin  PermissionLevel = 5
	ServerOwner  PermissionLevel = 6
	// Reserved tiers above owner. Never granted through the member services.
	Official   PermissionLevel = 7
	EventStaff PermissionLevel = 8
)

// Member is the join record binding a user to a server.
// Unique per (UserID, ServerID); exactly one owner-level member per server.
type Member struct {
	UserID          UserID          `json:"userId"`
	ServerID        ServerID        `json:"serverId"`
	Nickname        string          `json:"nickname"`
	PermissionLevel PermissionLevel `json:"permissionLevel"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// MemberPatch carries the mutable member fields; nil means "leave as is".
// Authorization distinguishes an absent level from an unchanged one, so
// the pointer form is load-bearing, not a convenience.
type MemberPatch struct {
	Nickname        *string          `json:"nickname,omitempty"`
	PermissionLevel *PermissionLevel `json:"permissionLevel,omitempty"`
}

func (p MemberPatch) ChangesLevel(current PermissionLevel) bool {
	return p.PermissionLevel != nil && *p.PermissionLevel != current
}

func (m *Member) Apply(p MemberPatch) {
	if p.Nickname != nil {
		m.Nickname = *p.Nickname
	}
	if p.PermissionLevel != nil {
		m.PermissionLevel = *p.PermissionLevel
	}
}
