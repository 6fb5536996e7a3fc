package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
)

// UserCache is a mock implementation of cache.UserCache.
type UserCache struct {
	mu sync.RWMutex

	users map[string]*model.User

	Calls struct {
		Get    int
		Set    int
		Delete int
	}

	Errors struct {
		Get    error
		Set    error
		Delete error
	}
}

// NewUserCache creates a new mock UserCache.
func NewUserCache() *UserCache {
	return &UserCache{
		users: make(map[string]*model.User),
	}
}

func (m *UserCache) Get(ctx context.Context, userID types.ID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Get++

	if m.Errors.Get != nil {
		return nil, m.Errors.Get
	}
	user, ok := m.users[userID.String()]
	if !ok {
		return nil, nil
	}
	return cloneUser(user), nil
}

func (m *UserCache) Set(ctx context.Context, user *model.User, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Set++

	if m.Errors.Set != nil {
		return m.Errors.Set
	}
	// Snapshot semantics, like the real adapter's serialized entry.
	m.users[user.ID().String()] = cloneUser(user)
	return nil
}

func (m *UserCache) Delete(ctx context.Context, userID types.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls.Delete++

	if m.Errors.Delete != nil {
		return m.Errors.Delete
	}
	delete(m.users, userID.String())
	return nil
}

// Contains reports whether the cache holds an entry for the user.
func (m *UserCache) Contains(userID types.ID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[userID.String()]
	return ok
}
