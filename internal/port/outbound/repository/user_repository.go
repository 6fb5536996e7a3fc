package repository

import (
	"context"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	// Create persists a new user.
	Create(ctx context.Context, user *model.User) error

	// FindByID retrieves a user by their ID.
	FindByID(ctx context.Context, id types.ID) (*model.User, error)

	// FindByUsername retrieves a user by username under case-insensitive
	// comparison.
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// SetUsername atomically writes the user's username. The store
	// enforces case-insensitive uniqueness at write time; a losing
	// concurrent writer receives ErrUsernameTaken.
	SetUsername(ctx context.Context, id types.ID, username string) error
}
