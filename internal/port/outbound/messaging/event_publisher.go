package messaging

import (
	"context"

	"github.com/0xsj/overwatch-profile/internal/domain/event"
)

// EventPublisher defines the interface for publishing domain events.
type EventPublisher interface {
	// Publish publishes a single event.
	Publish(ctx context.Context, evt event.Event) error

	// PublishAll publishes multiple events.
	PublishAll(ctx context.Context, events []event.Event) error
}

// Topic names for profile events.
const (
	TopicUserEvents = "profile.user"
)

// TopicForEvent returns the appropriate topic for an event type.
func TopicForEvent(evt event.Event) string {
	switch evt.AggregateType() {
	case event.AggregateTypeUser:
		return TopicUserEvents
	default:
		return TopicUserEvents
	}
}
