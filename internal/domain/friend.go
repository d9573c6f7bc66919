package domain

import "time"

// Friend is one directed edge of a mutual friendship. A friendship is
// always two edges, (UserID,TargetID) and (TargetID,UserID), created and
// deleted together.
type Friend struct {
	UserID    UserID    `json:"userId"`
	TargetID  UserID    `json:"targetId"`
	Note      string    `json:"note"`
	GroupName string    `json:"groupName"`
	CreatedAt time.Time `json:"createdAt"`
}

// FriendPatch mutates only the owning side's edge.
type FriendPatch struct {
	Note      *string `json:"note,omitempty"`
	GroupName *string `json:"groupName,omitempty"`
}

func (f *Friend) Apply(p FriendPatch) {
	if p.Note != nil {
		f.Note = *p.Note
	}
	if p.GroupName != nil {
		f.GroupName = *p.GroupName
	}
}
