package mocks

import (
	"context"
	"sync"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
)

// --- EnrollmentScheduler Mock ---

// EnrollmentScheduler is a mock implementation of mailer.EnrollmentScheduler.
type EnrollmentScheduler struct {
	mu sync.RWMutex

	scheduled []types.ID

	Calls struct {
		ScheduleEnrollmentEmail int
	}

	Errors struct {
		ScheduleEnrollmentEmail error
	}
}

// NewEnrollmentScheduler creates a new mock EnrollmentScheduler.
func NewEnrollmentScheduler() *EnrollmentScheduler {
	return &EnrollmentScheduler{}
}

func (m *EnrollmentScheduler) ScheduleEnrollmentEmail(ctx context.Context, userID types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.ScheduleEnrollmentEmail++

	if m.Errors.ScheduleEnrollmentEmail != nil {
		return m.Errors.ScheduleEnrollmentEmail
	}
	m.scheduled = append(m.scheduled, userID)
	return nil
}

// Scheduled returns the user IDs enrollment emails were scheduled for.
func (m *EnrollmentScheduler) Scheduled() []types.ID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.ID(nil), m.scheduled...)
}

// --- AvatarProvider Mock ---

// AvatarProvider is a mock implementation of avatar.Provider.
type AvatarProvider struct {
	mu sync.RWMutex

	// Candidates returned by SuggestAvatars, keyed by source name.
	Candidates map[string]model.AvatarCandidate

	Calls struct {
		SuggestAvatars int
	}

	Errors struct {
		SuggestAvatars error
	}
}

// NewAvatarProvider creates a new mock AvatarProvider.
func NewAvatarProvider(candidates map[string]model.AvatarCandidate) *AvatarProvider {
	return &AvatarProvider{Candidates: candidates}
}

func (m *AvatarProvider) SuggestAvatars(ctx context.Context, user *model.User) (map[string]model.AvatarCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.SuggestAvatars++

	if m.Errors.SuggestAvatars != nil {
		return nil, m.Errors.SuggestAvatars
	}
	return m.Candidates, nil
}

// --- AvatarStore Mock ---

// AvatarStore is a mock implementation of avatar.Store.
type AvatarStore struct {
	mu sync.RWMutex

	applied []model.AvatarCandidate

	Calls struct {
		SetAvatar int
	}

	Errors struct {
		SetAvatar error
	}
}

// NewAvatarStore creates a new mock AvatarStore.
func NewAvatarStore() *AvatarStore {
	return &AvatarStore{}
}

func (m *AvatarStore) SetAvatar(ctx context.Context, user *model.User, candidate model.AvatarCandidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.SetAvatar++

	if m.Errors.SetAvatar != nil {
		return m.Errors.SetAvatar
	}
	m.applied = append(m.applied, candidate)
	return nil
}

// Applied returns the candidates stored so far.
func (m *AvatarStore) Applied() []model.AvatarCandidate {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.AvatarCandidate(nil), m.applied...)
}

// --- MembershipService Mock ---

// MembershipService is a mock implementation of rooms.MembershipService.
type MembershipService struct {
	mu sync.RWMutex

	members map[string][]types.ID // roomID -> userIDs

	Calls struct {
		AddUserToRoom int
	}

	Errors struct {
		AddUserToRoom error
	}
}

// NewMembershipService creates a new mock MembershipService.
func NewMembershipService() *MembershipService {
	return &MembershipService{
		members: make(map[string][]types.ID),
	}
}

func (m *MembershipService) AddUserToRoom(ctx context.Context, roomID types.ID, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.AddUserToRoom++

	if m.Errors.AddUserToRoom != nil {
		return m.Errors.AddUserToRoom
	}
	m.members[roomID.String()] = append(m.members[roomID.String()], user.ID())
	return nil
}

// Members returns the user IDs added to a room.
func (m *MembershipService) Members(roomID types.ID) []types.ID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.ID(nil), m.members[roomID.String()]...)
}

// --- PermissionChecker Mock ---

// PermissionChecker is a mock implementation of authz.PermissionChecker.
type PermissionChecker struct {
	mu sync.RWMutex

	// Allowed maps "callerID:permission" to the check result.
	Allowed map[string]bool

	Calls struct {
		HasPermission int
	}

	Errors struct {
		HasPermission error
	}
}

// NewPermissionChecker creates a new mock PermissionChecker.
func NewPermissionChecker() *PermissionChecker {
	return &PermissionChecker{
		Allowed: make(map[string]bool),
	}
}

// Grant allows the caller the named permission.
func (m *PermissionChecker) Grant(callerID types.ID, permission string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Allowed[callerID.String()+":"+permission] = true
}

func (m *PermissionChecker) HasPermission(ctx context.Context, callerID types.ID, permission string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.HasPermission++

	if m.Errors.HasPermission != nil {
		return false, m.Errors.HasPermission
	}
	return m.Allowed[callerID.String()+":"+permission], nil
}

// --- Limiter Mock ---

// Limiter is a mock implementation of ratelimit.Limiter.
type Limiter struct {
	mu sync.RWMutex

	// Deny makes Allow return false.
	Deny bool

	// Keys records the scope keys Allow was called with.
	Keys []string

	Calls struct {
		Allow int
	}

	Errors struct {
		Allow error
	}
}

// NewLimiter creates a new mock Limiter.
func NewLimiter() *Limiter {
	return &Limiter{}
}

func (m *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Allow++

	if m.Errors.Allow != nil {
		return false, m.Errors.Allow
	}
	m.Keys = append(m.Keys, key)
	return !m.Deny, nil
}
