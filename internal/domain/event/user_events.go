package event

import (
	"github.com/0xsj/overwatch-pkg/types"
)

// UsernameChanged is emitted after a username is committed to the store.
// It is not emitted for the no-op case where the requested username
// already equals the current one.
type UsernameChanged struct {
	BaseEvent
	UserID           types.ID
	DisplayName      string
	NewUsername      string
	PreviousUsername types.Optional[string]
}

// NewUsernameChanged creates a new UsernameChanged event.
func NewUsernameChanged(
	userID types.ID,
	displayName string,
	newUsername string,
	previousUsername types.Optional[string],
) UsernameChanged {
	return UsernameChanged{
		BaseEvent:        NewBaseEvent(EventTypeUsernameChanged, userID, AggregateTypeUser),
		UserID:           userID,
		DisplayName:      displayName,
		NewUsername:      newUsername,
		PreviousUsername: previousUsername,
	}
}
