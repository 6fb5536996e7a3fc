package rooms

import (
	"context"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
)

// MembershipService defines the interface to the rooms service.
type MembershipService interface {
	// AddUserToRoom adds the user to the given room.
	AddUserToRoom(ctx context.Context, roomID types.ID, user *model.User) error
}
