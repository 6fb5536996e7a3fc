package cache

import (
	"context"
	"time"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
)

// UserCache defines the interface for user caching. The workflow reads
// through it when resolving a user snapshot and invalidates the entry
// after a committed username change, so readers never see a stale
// username for longer than one lookup.
type UserCache interface {
	// Get retrieves a user from the cache.
	// Returns nil if not found (cache miss).
	Get(ctx context.Context, userID types.ID) (*model.User, error)

	// Set stores a user in the cache with TTL.
	Set(ctx context.Context, user *model.User, ttl time.Duration) error

	// Delete removes a user from the cache.
	Delete(ctx context.Context, userID types.ID) error
}
