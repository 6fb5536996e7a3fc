package command

import (
	"context"
	"errors"
	"time"

	"github.com/0xsj/overwatch-profile/internal/app/service"
	domainerror "github.com/0xsj/overwatch-profile/internal/domain/error"
	"github.com/0xsj/overwatch-profile/internal/domain/model"
	"github.com/0xsj/overwatch-profile/internal/port/inbound/command"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/cache"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/repository"
)

// setUsernameHandler implements command.SetUsernameHandler.
//
// The handler walks a fixed sequence: validate input, resolve the user
// snapshot, short-circuit when the requested name already matches
// exactly, check availability, commit the single-field write, then run
// post-commit side effects. No mutation happens before the commit step,
// so every failure before it returns without rollback.
type setUsernameHandler struct {
	validator    *service.UsernameValidator
	availability *service.AvailabilityService
	userRepo     repository.UserRepository
	userCache    cache.UserCache
	sideEffects  *service.SideEffects
}

// NewSetUsernameHandler creates a new SetUsernameHandler.
func NewSetUsernameHandler(
	validator *service.UsernameValidator,
	availability *service.AvailabilityService,
	userRepo repository.UserRepository,
	userCache cache.UserCache,
	sideEffects *service.SideEffects,
) command.SetUsernameHandler {
	return &setUsernameHandler{
		validator:    validator,
		availability: availability,
		userRepo:     userRepo,
		userCache:    userCache,
		sideEffects:  sideEffects,
	}
}

func (h *setUsernameHandler) Handle(ctx context.Context, cmd command.SetUsername) (command.SetUsernameResult, error) {
	if cmd.UserID.IsEmpty() {
		return failure(domainerror.ErrMissingField), nil
	}

	username, err := h.validator.Validate(cmd.Username)
	if err != nil {
		return failure(err), nil
	}

	user, err := h.resolveUser(ctx, cmd)
	if err != nil {
		return failure(err), nil
	}

	// User already holds the desired username, return without touching
	// the store or any side effect.
	if user.UsernameIs(username) {
		return command.SetUsernameResult{Succeeded: true, User: user}, nil
	}

	previousUsername := user.Username()

	// A case-only rename of the user's own username needs no
	// availability check; it cannot collide with anyone else.
	if previousUsername.IsEmpty() || !user.UsernameEqualsFold(username) {
		available, err := h.availability.IsAvailable(ctx, username, user.ID())
		if err != nil {
			return failure(err), nil
		}
		if !available {
			return failure(domainerror.ErrUsernameTaken), nil
		}
	}

	if err := h.userRepo.SetUsername(ctx, user.ID(), username); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			// A concurrent writer won the race; the store's uniqueness
			// constraint is the final arbiter.
			return failure(domainerror.ErrUsernameTaken), nil
		}
		return failure(err), nil
	}
	user.SetUsername(username)

	// Invalidate cache
	_ = h.userCache.Delete(ctx, user.ID())

	if err := h.sideEffects.Run(ctx, user, previousUsername); err != nil {
		return command.SetUsernameResult{}, err
	}

	return command.SetUsernameResult{Succeeded: true, User: user}, nil
}

// userCacheTTL bounds how long a resolved snapshot may serve lookups.
const userCacheTTL = time.Hour

func (h *setUsernameHandler) resolveUser(ctx context.Context, cmd command.SetUsername) (*model.User, error) {
	// A caller-supplied snapshot takes precedence over a fresh lookup.
	if cmd.User != nil {
		return cmd.User, nil
	}

	// Cache errors degrade to a store lookup.
	if cached, err := h.userCache.Get(ctx, cmd.UserID); err == nil && cached != nil {
		return cached, nil
	}

	user, err := h.userRepo.FindByID(ctx, cmd.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domainerror.ErrUserNotFound
		}
		return nil, err
	}

	_ = h.userCache.Set(ctx, user, userCacheTTL)
	return user, nil
}

func failure(err error) command.SetUsernameResult {
	return command.SetUsernameResult{Succeeded: false, Error: err.Error()}
}
