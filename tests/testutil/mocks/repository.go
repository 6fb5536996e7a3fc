// Package mocks provides mock implementations of ports for testing.
package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/repository"
)

// --- UserRepository Mock ---

// UserRepository is a mock implementation of repository.UserRepository.
// SetUsername enforces case-insensitive uniqueness, mirroring the
// store-side constraint the real adapter relies on. Reads hand out
// snapshots, like the real adapter's row scans, so callers mutating a
// returned user never touch the stored one.
type UserRepository struct {
	mu sync.RWMutex

	// Storage
	users map[string]*model.User // by ID

	// Call tracking
	Calls struct {
		Create         int
		FindByID       int
		FindByUsername int
		SetUsername    int
	}

	// Error injection
	Errors struct {
		Create         error
		FindByID       error
		FindByUsername error
		SetUsername    error
	}
}

// NewUserRepository creates a new mock UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]*model.User),
	}
}

func (m *UserRepository) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Create++

	if m.Errors.Create != nil {
		return m.Errors.Create
	}

	m.users[user.ID().String()] = cloneUser(user)
	return nil
}

func (m *UserRepository) FindByID(ctx context.Context, id types.ID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.FindByID++

	if m.Errors.FindByID != nil {
		return nil, m.Errors.FindByID
	}

	user, ok := m.users[id.String()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(user), nil
}

func (m *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.FindByUsername++

	if m.Errors.FindByUsername != nil {
		return nil, m.Errors.FindByUsername
	}

	if user := m.holderOf(username); user != nil {
		return cloneUser(user), nil
	}
	return nil, repository.ErrNotFound
}

func (m *UserRepository) SetUsername(ctx context.Context, id types.ID, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.SetUsername++

	if m.Errors.SetUsername != nil {
		return m.Errors.SetUsername
	}

	user, ok := m.users[id.String()]
	if !ok {
		return repository.ErrNotFound
	}

	if holder := m.holderOf(username); holder != nil && holder.ID() != id {
		return repository.ErrUsernameTaken
	}

	user.SetUsername(username)
	return nil
}

func (m *UserRepository) holderOf(username string) *model.User {
	for _, user := range m.users {
		if user.UsernameEqualsFold(username) {
			return user
		}
	}
	return nil
}

func cloneUser(user *model.User) *model.User {
	emails := append([]types.Email(nil), user.Emails()...)
	return model.ReconstructUser(
		user.ID(),
		user.Username(),
		user.DisplayName(),
		emails,
		user.InviteToken(),
		user.CreatedAt(),
		user.UpdatedAt(),
	)
}

// --- InviteRepository Mock ---

// InviteRepository is a mock implementation of repository.InviteRepository.
type InviteRepository struct {
	mu sync.RWMutex

	invites map[string]*model.Invite

	Calls struct {
		FindByToken int
	}

	Errors struct {
		FindByToken error
	}
}

// NewInviteRepository creates a new mock InviteRepository.
func NewInviteRepository() *InviteRepository {
	return &InviteRepository{
		invites: make(map[string]*model.Invite),
	}
}

// Add seeds an invite.
func (m *InviteRepository) Add(invite *model.Invite) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invites[invite.Token()] = invite
}

func (m *InviteRepository) FindByToken(ctx context.Context, token string) (*model.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.FindByToken++

	if m.Errors.FindByToken != nil {
		return nil, m.Errors.FindByToken
	}

	invite, ok := m.invites[strings.TrimSpace(token)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return invite, nil
}
