package ratelimit

import (
	"context"
)

// Limiter defines a sliding-window call budget.
// Allow both checks and consumes: a true result means the call was
// admitted and counted against the window.
type Limiter interface {
	// Allow reports whether another call is admitted for the given
	// scope key within the current window.
	Allow(ctx context.Context, key string) (bool, error)
}
