package model

import (
	"github.com/0xsj/overwatch-pkg/types"

	domainerror "github.com/0xsj/overwatch-profile/internal/domain/error"
)

// Invite is a pending invitation record. The username workflow only
// reads invites; it never creates or consumes them.
type Invite struct {
	token  string
	roomID types.Optional[types.ID]
}

// NewInvite creates a new Invite.
func NewInvite(token string, roomID types.Optional[types.ID]) (*Invite, error) {
	if token == "" {
		return nil, domainerror.ErrInviteTokenRequired
	}
	return &Invite{
		token:  token,
		roomID: roomID,
	}, nil
}

// ReconstructInvite creates an Invite from persisted data.
func ReconstructInvite(token string, roomID types.Optional[types.ID]) *Invite {
	return &Invite{
		token:  token,
		roomID: roomID,
	}
}

func (i *Invite) Token() string                    { return i.token }
func (i *Invite) RoomID() types.Optional[types.ID] { return i.roomID }

// HasRoom reports whether the invite references a room to join.
func (i *Invite) HasRoom() bool {
	return i.roomID.IsPresent()
}
