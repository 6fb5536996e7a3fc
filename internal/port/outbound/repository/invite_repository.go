package repository

import (
	"context"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
)

// InviteRepository defines the interface for invite lookups.
// The username workflow only reads invites.
type InviteRepository interface {
	// FindByToken retrieves an invite by its token.
	FindByToken(ctx context.Context, token string) (*model.Invite, error)
}
