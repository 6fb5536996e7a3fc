package model

import (
	"strings"

	"github.com/0xsj/overwatch-pkg/types"

	domainerror "github.com/0xsj/overwatch-profile/internal/domain/error"
)

// User is the root aggregate for profile identity. It is a snapshot of
// the identity store's user record; the username workflow mutates only
// the username field.
type User struct {
	id          types.ID
	username    types.Optional[string]
	displayName string
	emails      []types.Email
	inviteToken types.Optional[string]
	createdAt   types.Timestamp
	updatedAt   types.Timestamp
}

// NewUser creates a new User aggregate without a username.
func NewUser(displayName string) (*User, error) {
	if strings.TrimSpace(displayName) == "" {
		return nil, domainerror.ErrDisplayNameRequired
	}

	now := types.Now()

	return &User{
		id:          types.NewID(),
		username:    types.None[string](),
		displayName: displayName,
		inviteToken: types.None[string](),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructUser creates a User from persisted data (bypasses validation).
// Used by repository when loading from database.
func ReconstructUser(
	id types.ID,
	username types.Optional[string],
	displayName string,
	emails []types.Email,
	inviteToken types.Optional[string],
	createdAt types.Timestamp,
	updatedAt types.Timestamp,
) *User {
	return &User{
		id:          id,
		username:    username,
		displayName: displayName,
		emails:      emails,
		inviteToken: inviteToken,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// Getters

func (u *User) ID() types.ID                        { return u.id }
func (u *User) Username() types.Optional[string]    { return u.username }
func (u *User) DisplayName() string                 { return u.displayName }
func (u *User) Emails() []types.Email               { return u.emails }
func (u *User) InviteToken() types.Optional[string] { return u.inviteToken }
func (u *User) CreatedAt() types.Timestamp          { return u.createdAt }
func (u *User) UpdatedAt() types.Timestamp          { return u.updatedAt }

// Commands

func (u *User) SetUsername(username string) {
	u.username = types.Some(username)
	u.updatedAt = types.Now()
}

func (u *User) SetDisplayName(displayName string) {
	u.displayName = displayName
	u.updatedAt = types.Now()
}

func (u *User) AddEmail(email types.Email) {
	u.emails = append(u.emails, email)
	u.updatedAt = types.Now()
}

func (u *User) SetInviteToken(token string) {
	u.inviteToken = types.Some(token)
	u.updatedAt = types.Now()
}

func (u *User) ClearInviteToken() {
	u.inviteToken = types.None[string]()
	u.updatedAt = types.Now()
}

// Queries

// HasUsername reports whether the user has ever been assigned a username.
func (u *User) HasUsername() bool {
	return u.username.IsPresent()
}

// HasEmail reports whether the user has at least one email address.
func (u *User) HasEmail() bool {
	return len(u.emails) > 0
}

// UsernameIs reports whether the user's current username exactly equals
// the candidate. A user without a username never matches.
func (u *User) UsernameIs(candidate string) bool {
	return u.username.IsPresent() && u.username.MustGet() == candidate
}

// UsernameEqualsFold reports whether the user's current username equals
// the candidate under case folding.
func (u *User) UsernameEqualsFold(candidate string) bool {
	return u.username.IsPresent() && strings.EqualFold(u.username.MustGet(), candidate)
}
