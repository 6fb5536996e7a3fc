package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
	"github.com/0xsj/overwatch-profile/internal/port/outbound/cache"
)

const (
	userKeyPrefix  = "profile:user:"
	defaultUserTTL = 1 * time.Hour
)

// userCache implements cache.UserCache.
type userCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUserCache creates a new UserCache.
func NewUserCache(client *redis.Client, ttl time.Duration) cache.UserCache {
	if ttl == 0 {
		ttl = defaultUserTTL
	}
	return &userCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *userCache) Get(ctx context.Context, userID types.ID) (*model.User, error) {
	data, err := c.client.Get(ctx, userKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get user from cache: %w", err)
	}

	var cached cachedUser
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return cached.toModel()
}

func (c *userCache) Set(ctx context.Context, user *model.User, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	data, err := json.Marshal(newCachedUser(user))
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	if err := c.client.Set(ctx, userKey(user.ID()), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set user in cache: %w", err)
	}
	return nil
}

func (c *userCache) Delete(ctx context.Context, userID types.ID) error {
	if err := c.client.Del(ctx, userKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete user from cache: %w", err)
	}
	return nil
}

func userKey(userID types.ID) string {
	return userKeyPrefix + userID.String()
}

// cachedUser is the cache wire format for a user snapshot.
type cachedUser struct {
	ID          string   `json:"id"`
	Username    *string  `json:"username,omitempty"`
	DisplayName string   `json:"display_name"`
	Emails      []string `json:"emails,omitempty"`
	InviteToken *string  `json:"invite_token,omitempty"`
	CreatedAt   int64    `json:"created_at"`
	UpdatedAt   int64    `json:"updated_at"`
}

func newCachedUser(user *model.User) cachedUser {
	cached := cachedUser{
		ID:          user.ID().String(),
		DisplayName: user.DisplayName(),
		CreatedAt:   user.CreatedAt().Time().Unix(),
		UpdatedAt:   user.UpdatedAt().Time().Unix(),
	}
	if user.Username().IsPresent() {
		username := user.Username().MustGet()
		cached.Username = &username
	}
	for _, email := range user.Emails() {
		cached.Emails = append(cached.Emails, email.String())
	}
	if user.InviteToken().IsPresent() {
		token := user.InviteToken().MustGet()
		cached.InviteToken = &token
	}
	return cached
}

func (c cachedUser) toModel() (*model.User, error) {
	id, err := types.ParseID(c.ID)
	if err != nil {
		return nil, err
	}

	username := types.None[string]()
	if c.Username != nil {
		username = types.Some(*c.Username)
	}

	emails := make([]types.Email, 0, len(c.Emails))
	for _, raw := range c.Emails {
		email, err := types.NewEmail(raw)
		if err != nil {
			continue
		}
		emails = append(emails, email)
	}

	inviteToken := types.None[string]()
	if c.InviteToken != nil {
		inviteToken = types.Some(*c.InviteToken)
	}

	return model.ReconstructUser(
		id,
		username,
		c.DisplayName,
		emails,
		inviteToken,
		types.FromTime(time.Unix(c.CreatedAt, 0)),
		types.FromTime(time.Unix(c.UpdatedAt, 0)),
	), nil
}
