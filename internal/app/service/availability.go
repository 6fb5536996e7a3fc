package service

import (
	"context"
	"errors"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/port/outbound/repository"
)

// AvailabilityService answers whether a candidate username is free.
// Comparison is case-insensitive and the requester's own username never
// collides with itself.
type AvailabilityService struct {
	users repository.UserRepository
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(users repository.UserRepository) *AvailabilityService {
	return &AvailabilityService{users: users}
}

// IsAvailable reports whether the candidate username can be assigned to
// the requesting user.
func (s *AvailabilityService) IsAvailable(ctx context.Context, candidate string, requesterID types.ID) (bool, error) {
	holder, err := s.users.FindByUsername(ctx, candidate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	return holder.ID() == requesterID, nil
}
