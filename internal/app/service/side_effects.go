package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/0xsj/overwatch-pkg/log"
	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/domain/event"
	"github.com/0xsj/overwatch-profile/internal/domain/model"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/mailer"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/messaging"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/repository"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/rooms"
)

// RoomJoinPolicy decides whether an invite-room join failure fails the
// username change or is logged like the other side effects.
type RoomJoinPolicy string

const (
	// RoomJoinPropagate surfaces a room-join failure to the caller.
	RoomJoinPropagate RoomJoinPolicy = "propagate"

	// RoomJoinBestEffort logs a room-join failure and moves on.
	RoomJoinBestEffort RoomJoinPolicy = "best_effort"
)

// IsValid reports whether the policy is a recognized value.
func (p RoomJoinPolicy) IsValid() bool {
	switch p {
	case RoomJoinPropagate, RoomJoinBestEffort:
		return true
	default:
		return false
	}
}

// SideEffectConfig holds the feature switches for post-commit effects.
type SideEffectConfig struct {
	EnrollmentEmailEnabled bool
	DefaultAvatarEnabled   bool
	RoomJoinPolicy         RoomJoinPolicy
}

// SideEffects sequences the best-effort actions that follow a committed
// username change. The first three run only on the user's first-ever
// username assignment; the change broadcast runs after every real
// commit. None of them run for the no-op short-circuit.
type SideEffects struct {
	cfg       SideEffectConfig
	mailer    mailer.EnrollmentScheduler
	avatars   *AvatarService
	invites   repository.InviteRepository
	rooms     rooms.MembershipService
	publisher messaging.EventPublisher
	logger    log.Logger

	// dispatch runs a task off the caller's path. Overridable in tests.
	dispatch func(fn func())
}

// NewSideEffects creates a new SideEffects orchestrator.
func NewSideEffects(
	cfg SideEffectConfig,
	enrollment mailer.EnrollmentScheduler,
	avatars *AvatarService,
	invites repository.InviteRepository,
	membership rooms.MembershipService,
	publisher messaging.EventPublisher,
	logger log.Logger,
) *SideEffects {
	if !cfg.RoomJoinPolicy.IsValid() {
		cfg.RoomJoinPolicy = RoomJoinPropagate
	}
	return &SideEffects{
		cfg:       cfg,
		mailer:    enrollment,
		avatars:   avatars,
		invites:   invites,
		rooms:     membership,
		publisher: publisher,
		logger:    logger,
		dispatch:  func(fn func()) { go fn() },
	}
}

// Run executes the side effects for a committed username change.
// previousUsername is the username the user held before this commit;
// an absent value marks this as the first-ever assignment.
// The returned error is non-nil only for a room-join failure under the
// propagate policy.
func (s *SideEffects) Run(ctx context.Context, user *model.User, previousUsername types.Optional[string]) error {
	firstUsername := previousUsername.IsEmpty()

	if firstUsername {
		s.scheduleEnrollmentEmail(ctx, user)
		if s.cfg.DefaultAvatarEnabled {
			s.avatars.ApplyDefaultAvatar(ctx, user)
		}
		if err := s.joinInviteRoom(ctx, user); err != nil {
			return err
		}
	}

	s.broadcastChange(ctx, user, previousUsername)
	return nil
}

func (s *SideEffects) scheduleEnrollmentEmail(ctx context.Context, user *model.User) {
	if !s.cfg.EnrollmentEmailEnabled || !user.HasEmail() {
		return
	}

	userID := user.ID()
	// Detach from the caller's context so a mail-subsystem stall or the
	// caller returning cannot reach back into the response path.
	mailCtx := context.WithoutCancel(ctx)
	s.dispatch(func() {
		if err := s.mailer.ScheduleEnrollmentEmail(mailCtx, userID); err != nil {
			s.logger.Error("failed to schedule enrollment email",
				log.String("user_id", userID.String()),
				log.String("error", err.Error()),
			)
		}
	})
}

func (s *SideEffects) joinInviteRoom(ctx context.Context, user *model.User) error {
	if user.InviteToken().IsEmpty() {
		return nil
	}

	token := user.InviteToken().MustGet()
	invite, err := s.invites.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// A stale token is not an error: the invite may have been
			// removed since signup.
			return nil
		}
		return s.roomJoinFailed(user, token, err)
	}
	if !invite.HasRoom() {
		return nil
	}

	if err := s.rooms.AddUserToRoom(ctx, invite.RoomID().MustGet(), user); err != nil {
		return s.roomJoinFailed(user, token, err)
	}
	return nil
}

func (s *SideEffects) roomJoinFailed(user *model.User, token string, err error) error {
	if s.cfg.RoomJoinPolicy == RoomJoinBestEffort {
		s.logger.Error("failed to join invite room",
			log.String("user_id", user.ID().String()),
			log.String("invite_token", token),
			log.String("error", err.Error()),
		)
		return nil
	}
	return fmt.Errorf("failed to join invite room: %w", err)
}

func (s *SideEffects) broadcastChange(ctx context.Context, user *model.User, previousUsername types.Optional[string]) {
	evt := event.NewUsernameChanged(
		user.ID(),
		user.DisplayName(),
		user.Username().MustGet(),
		previousUsername,
	)
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Error("failed to broadcast username change",
			log.String("user_id", user.ID().String()),
			log.String("error", err.Error()),
		)
	}
}
