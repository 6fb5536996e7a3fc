// Package memory provides in-process adapter implementations for
// single-instance deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/0xsj/overwatch-profile/internal/port/outbound/ratelimit"
)

// rateLimiter implements ratelimit.Limiter with per-key timestamp
// windows guarded by a mutex. State is process-local; use the Redis
// limiter when the budget must span instances.
type rateLimiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	calls  map[string][]time.Time

	// now is replaceable in tests.
	now func() time.Time
}

// NewRateLimiter creates a new sliding-window Limiter admitting at most
// max calls per window per key.
func NewRateLimiter(max int, window time.Duration) ratelimit.Limiter {
	return newRateLimiter(max, window)
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		max:    max,
		window: window,
		calls:  make(map[string][]time.Time),
		now:    time.Now,
	}
}

func (l *rateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.window)

	kept := l.calls[key][:0]
	for _, at := range l.calls[key] {
		if at.After(windowStart) {
			kept = append(kept, at)
		}
	}

	if len(kept) >= l.max {
		l.calls[key] = kept
		return false, nil
	}

	l.calls[key] = append(kept, now)
	return true, nil
}
