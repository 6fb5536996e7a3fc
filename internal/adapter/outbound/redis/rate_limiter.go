package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/0xsj/overwatch-profile/internal/port/outbound/ratelimit"
)

const rateLimitKeyPrefix = "profile:ratelimit:"

// slidingWindowScript trims, counts, and conditionally records in one
// server-side step, so concurrent calls sharing a key cannot both read
// a stale count and over-admit.
//
// KEYS[1] window key, ARGV[1] trim-before score, ARGV[2] now score,
// ARGV[3] max, ARGV[4] key TTL millis. Returns 1 when admitted.
var slidingWindowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[3]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return 1
`)

// rateLimiter implements ratelimit.Limiter with a sorted-set sliding
// window: each admitted call is a member scored by its timestamp,
// entries older than the window are trimmed before counting. The
// window state lives in Redis so the budget spans service instances.
type rateLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
}

// NewRateLimiter creates a new sliding-window Limiter admitting at most
// max calls per window per key.
func NewRateLimiter(client *redis.Client, max int, window time.Duration) ratelimit.Limiter {
	return &rateLimiter{
		client: client,
		max:    int64(max),
		window: window,
	}
}

func (l *rateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-l.window)

	admitted, err := slidingWindowScript.Run(ctx, l.client,
		[]string{rateLimitKeyPrefix + key},
		windowStart.UnixNano(),
		now.UnixNano(),
		l.max,
		l.window.Milliseconds(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to update rate limit window: %w", err)
	}

	return admitted == 1, nil
}
