package command

import (
	"context"

	"github.com/0xsj/overwatch-pkg/types"

	"github.com/0xsj/overwatch-profile/internal/domain/model"
)

// SetUsername changes a user's username.
type SetUsername struct {
	// CallerID identifies the authenticated caller. It is consulted by
	// the rate-limited gate, not by the workflow itself.
	CallerID types.ID

	// UserID is the user whose username is being set.
	UserID types.ID

	// Username is the requested username. It is trimmed and validated
	// by the workflow.
	Username string

	// User is an optional fresh snapshot of the target user. When set
	// it takes precedence over a store lookup.
	User *model.User
}

func (c SetUsername) CommandName() string {
	return "profile.set_username"
}

// SetUsernameResult is the uniform outcome of a username change.
// Expected failures (missing field, invalid username, name taken,
// permission denied, rate limited) are reported here, not as errors.
type SetUsernameResult struct {
	Succeeded bool
	Error     string
	User      *model.User
}

// SetUsernameHandler handles the SetUsername command.
type SetUsernameHandler interface {
	Handle(ctx context.Context, cmd SetUsername) (SetUsernameResult, error)
}
