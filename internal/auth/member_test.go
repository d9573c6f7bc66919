package auth

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voco-chat/bridge/internal/apperr"
	"github.com/voco-chat/bridge/internal/domain"
)

func member(userID string, level domain.PermissionLevel) *domain.Member {
	return &domain.Member{
		UserID:          domain.UserID(userID),
		ServerID:        "srv-1",
		PermissionLevel: level,
	}
}

func levelPtr(l domain.PermissionLevel) *domain.PermissionLevel { return &l }
func strPtr(s string) *string                                   { return &s }

func TestDecideMemberCreate(t *testing.T) {
	server := &domain.Server{ID: "srv-1", OwnerID: "owner"}

	tests := []struct {
		name    string
		req     MemberCreate
		allowed bool
		wantTag string
	}{
		{
			name: "admin creates member below own level",
			req: MemberCreate{
				OperatorID: "op", UserID: "u1", Server: server,
				Operator: member("op", domain.ServerAdmin), Preset: domain.MemberLevel,
			},
			allowed: true,
		},
		{
			name: "admin creates member at own level",
			req: MemberCreate{
				OperatorID: "op", UserID: "u1", Server: server,
				Operator: member("op", domain.ServerAdmin), Preset: domain.ServerAdmin,
			},
			wantTag: apperr.TagPermissionTooHigh,
		},
		{
			name: "admin creates owner-level member",
			req: MemberCreate{
				OperatorID: "op", UserID: "u1", Server: server,
				Operator: member("op", domain.ServerAdmin), Preset: domain.ServerOwner,
			},
			wantTag: apperr.TagPermissionTooHigh,
		},
		{
			name: "channel admin cannot create members",
			req: MemberCreate{
				OperatorID: "op", UserID: "u1", Server: server,
				Operator: member("op", domain.ChannelAdmin), Preset: domain.Guest,
			},
			wantTag: apperr.TagPermissionDenied,
		},
		{
			name: "non-member operator cannot create members",
			req: MemberCreate{
				OperatorID: "op", UserID: "u1", Server: server,
				Operator: nil, Preset: domain.Guest,
			},
			wantTag: apperr.TagPermissionDenied,
		},
		{
			name:    "self-join as guest",
			req:     MemberCreate{OperatorID: "u1", UserID: "u1", Server: server, Preset: domain.Guest},
			allowed: true,
		},
		{
			name:    "self-join above guest",
			req:     MemberCreate{OperatorID: "u1", UserID: "u1", Server: server, Preset: domain.ChannelMod},
			wantTag: apperr.TagPermissionDenied,
		},
		{
			name:    "owner self-joins as owner",
			req:     MemberCreate{OperatorID: "owner", UserID: "owner", Server: server, Preset: domain.ServerOwner},
			allowed: true,
		},
		{
			name:    "owner self-joins below owner level",
			req:     MemberCreate{OperatorID: "owner", UserID: "owner", Server: server, Preset: domain.Guest},
			wantTag: apperr.TagPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := DecideMemberCreate(tt.req)
			if tt.allowed {
				require.True(t, dec.Allowed, dec.Message)
				assert.Empty(t, dec.Tag)
				return
			}
			require.False(t, dec.Allowed)
			assert.Equal(t, tt.wantTag, dec.Tag)
			assert.NotEmpty(t, dec.Message)
		})
	}
}

func TestDecideMemberUpdate(t *testing.T) {
	tests := []struct {
		name    string
		req     MemberUpdate
		allowed bool
		wantTag string
	}{
		{
			name: "admin promotes member",
			req: MemberUpdate{
				OperatorID: "op", UserID: "u1",
				Operator: member("op", domain.ServerAdmin), Target: member("u1", domain.MemberLevel),
				Patch: domain.MemberPatch{PermissionLevel: levelPtr(domain.ChannelMod)},
			},
			allowed: true,
		},
		{
			name: "member changes another member's nickname",
			req: MemberUpdate{
				OperatorID: "op", UserID: "u1",
				Operator: member("op", domain.MemberLevel), Target: member("u1", domain.Guest),
				Patch: domain.MemberPatch{Nickname: strPtr("newname")},
			},
			wantTag: apperr.TagPermissionDenied,
		},
		{
			name: "channel mod changes another member's nickname",
			req: MemberUpdate{
				OperatorID: "op", UserID: "u1",
				Operator: member("op", domain.ChannelMod), Target: member("u1", domain.MemberLevel),
				Patch: domain.MemberPatch{Nickname: strPtr("newname")},
			},
			wantTag: apperr.TagPermissionDenied,
		},
		{
			name: "admin changes another member's nickname",
			req: MemberUpdate{
				OperatorID: "op", UserID: "u1",
				Operator: member("op", domain.ServerAdmin), Target: member("u1", domain.MemberLevel),
				Patch: domain.MemberPatch{Nickname: strPtr("newname")},
			},
			allowed: true,
		},
		{
			name: "channel admin promotes a guest",
			req: MemberUpdate{
				OperatorID: "op", UserID: "u1",
				Operator: member("op", domain.ChannelAdmin), Target: member("u1", domain.Guest),
				Patch: domain.MemberPatch{PermissionLevel: levelPtr(domain.MemberLevel)},
			},
			wantTag: apperr.TagPermissionDenied,
		},
		{
			name: "admin promotes a guest",
			req: MemberUpdate{
				OperatorID: "op", UserID: "u1",
				Operator: member("op", domain.ServerAdmin), Target: member("u1", domain.Guest),
				Patch: domain.MemberPatch{PermissionLevel: levelPtr(domain.MemberLevel)},
			},
			allowed: true,
		},
		{
			name: "channel admin demotes to guest",
			req: MemberUpdate{
				OperatorID: "op", UserID: "u1",
				Operator: member("op", domain.ChannelAdmin), Target: member("u1", domain.MemberLevel),
				Patch: domain.MemberPatch{PermissionLevel: levelPtr(domain.Guest)},
			},
			wantTag: apperr.TagPermissionDenied,
		},
		{
			name: "cannot update the owner",
			req: MemberUpdate{
				OperatorID: "op", UserID: "u1",
				Operator: member("op", domain.EventStaff), Target: member("u1", domain.ServerOwner),
				Patch: domain.MemberPatch{Nickname: strPtr("x")},
			},
			wantTag: apperr.TagPermissionDenied,
		},
		{
			name: "grant at operator's own level",
			req: MemberUpdate{
				OperatorID: "op", UserID: "u1",
				Operator: member("op", domain.ServerAdmin), Target: member("u1", domain.MemberLevel),
				Patch: domain.MemberPatch{PermissionLevel: levelPtr(domain.ServerAdmin)},
			},
			wantTag: apperr.TagPermissionTooHigh,
		},
		{
			name: "self nickname change",
			req: MemberUpdate{
				OperatorID: "u1", UserID: "u1",
				Target: member("u1", domain.MemberLevel),
				Patch:  domain.MemberPatch{Nickname: strPtr("me")},
			},
			allowed: true,
		},
		{
			name: "self permission change",
			req: MemberUpdate{
				OperatorID: "u1", UserID: "u1",
				Target: member("u1", domain.MemberLevel),
				Patch:  domain.MemberPatch{PermissionLevel: levelPtr(domain.ChannelMod)},
			},
			wantTag: apperr.TagPermissionDenied,
		},
		{
			name: "self update restating current level",
			req: MemberUpdate{
				OperatorID: "u1", UserID: "u1",
				Target: member("u1", domain.MemberLevel),
				Patch:  domain.MemberPatch{PermissionLevel: levelPtr(domain.MemberLevel)},
			},
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := DecideMemberUpdate(tt.req)
			if tt.allowed {
				require.True(t, dec.Allowed, dec.Message)
				return
			}
			require.False(t, dec.Allowed)
			assert.Equal(t, tt.wantTag, dec.Tag)
		})
	}
}

func TestDecideMemberDelete(t *testing.T) {
	tests := []struct {
		name    string
		req     MemberDelete
		allowed bool
	}{
		{
			name: "mod removes a guest",
			req: MemberDelete{
				OperatorID: "op", UserID: "u1",
				Operator: member("op", domain.ChannelMod), Target: member("u1", domain.Guest),
			},
			allowed: true,
		},
		{
			name: "mod removes an equal",
			req: MemberDelete{
				OperatorID: "op", UserID: "u1",
				Operator: member("op", domain.ChannelMod), Target: member("u1", domain.ChannelMod),
			},
		},
		{
			name: "member removes anyone",
			req: MemberDelete{
				OperatorID: "op", UserID: "u1",
				Operator: member("op", domain.MemberLevel), Target: member("u1", domain.Guest),
			},
		},
		{
			name: "nobody removes the owner",
			req: MemberDelete{
				OperatorID: "op", UserID: "u1",
				Operator: member("op", domain.EventStaff), Target: member("u1", domain.ServerOwner),
			},
		},
		{
			name: "self delete is always denied",
			req: MemberDelete{
				OperatorID: "u1", UserID: "u1",
				Operator: member("u1", domain.ServerAdmin), Target: member("u1", domain.ServerAdmin),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := DecideMemberDelete(tt.req)
			assert.Equal(t, tt.allowed, dec.Allowed, dec.Message)
		})
	}
}

// Update and Delete by a non-self operator may be allowed only when the
// operator outranks the target, across the whole level grid.
func TestPermissionMonotonicity(t *testing.T) {
	for op := domain.PermissionLevel(1); op <= domain.EventStaff; op++ {
		for target := domain.PermissionLevel(1); target <= domain.EventStaff; target++ {
			name := fmt.Sprintf("op=%d/target=%d", op, target)
			t.Run(name, func(t *testing.T) {
				upd := DecideMemberUpdate(MemberUpdate{
					OperatorID: "op", UserID: "u1",
					Operator: member("op", op), Target: member("u1", target),
					Patch: domain.MemberPatch{PermissionLevel: levelPtr(domain.Guest)},
				})
				if upd.Allowed {
					assert.Greater(t, op, target, "update allowed without outranking")
				}
				del := DecideMemberDelete(MemberDelete{
					OperatorID: "op", UserID: "u1",
					Operator: member("op", op), Target: member("u1", target),
				})
				if del.Allowed {
					assert.Greater(t, op, target, "delete allowed without outranking")
				}
			})
		}
	}
}
