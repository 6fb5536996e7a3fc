// Package testutil provides shared helpers for tests.
package testutil

import (
	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
)

// Fixtures provides builders for domain models in tests.
var Fixtures = &fixtures{}

type fixtures struct{}

// User creates a new User with default values and no username.
func (f *fixtures) User() *model.User {
	user, err := model.NewUser("Test User")
	if err != nil {
		panic("fixtures: failed to create user: " + err.Error())
	}
	return user
}

// UserBuilder returns a builder for customizing User creation.
func (f *fixtures) UserBuilder() *UserBuilder {
	return &UserBuilder{
		id:          types.NewID(),
		displayName: "Test User",
		username:    types.None[string](),
		inviteToken: types.None[string](),
	}
}

type UserBuilder struct {
	id          types.ID
	username    types.Optional[string]
	displayName string
	emails      []types.Email
	inviteToken types.Optional[string]
}

func (b *UserBuilder) WithID(id types.ID) *UserBuilder {
	b.id = id
	return b
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = types.Some(username)
	return b
}

func (b *UserBuilder) WithDisplayName(displayName string) *UserBuilder {
	b.displayName = displayName
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	e, err := types.NewEmail(email)
	if err != nil {
		panic("fixtures: invalid email: " + err.Error())
	}
	b.emails = append(b.emails, e)
	return b
}

func (b *UserBuilder) WithInviteToken(token string) *UserBuilder {
	b.inviteToken = types.Some(token)
	return b
}

func (b *UserBuilder) Build() *model.User {
	now := types.Now()
	return model.ReconstructUser(
		b.id,
		b.username,
		b.displayName,
		b.emails,
		b.inviteToken,
		now,
		now,
	)
}

// Invite creates an invite pointing at the given room.
func (f *fixtures) Invite(token string, roomID types.ID) *model.Invite {
	return model.ReconstructInvite(token, types.Some(roomID))
}

// InviteWithoutRoom creates an invite that references no room.
func (f *fixtures) InviteWithoutRoom(token string) *model.Invite {
	return model.ReconstructInvite(token, types.None[types.ID]())
}
