package avatar

import (
	"context"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
)

// Provider suggests avatar candidates for a user, keyed by source name.
// The mapping may be empty when the provider has nothing to offer.
type Provider interface {
	SuggestAvatars(ctx context.Context, user *model.User) (map[string]model.AvatarCandidate, error)
}

// Store persists a user's chosen avatar image.
type Store interface {
	SetAvatar(ctx context.Context, user *model.User, candidate model.AvatarCandidate) error
}
