package ratelimit

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements Limiter on a Redis sorted set per key, so the
// window is shared across every process pointing at the same Redis.
type RedisLimiter struct {
	rdb redis.Cmdable
	seq atomic.Uint64
}

// NewRedisLimiter creates a limiter on an existing Redis client.
func NewRedisLimiter(rdb redis.Cmdable) *RedisLimiter {
	return &RedisLimiter{rdb: rdb}
}

// Check implements the sliding window: discard entries older than the window,
// record the current hit, count what remains, and refresh the key's expiry so
// idle keys self-clean. All four commands run in one MULTI/EXEC so concurrent
// checks never observe a torn window.
//
// If Redis is unreachable the check fails open and reports (true, 0):
// availability is deliberately preferred over strict enforcement here.
func (l *RedisLimiter) Check(ctx context.Context, key string, maxRequests int, window time.Duration) (bool, int) {
	now := time.Now()
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	// The sequence suffix keeps members unique when two checks land in the
	// same nanosecond; a plain timestamp member would collapse them.
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + strconv.FormatUint(l.seq.Add(1), 10)

	var card *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "0", cutoff)
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
		card = pipe.ZCard(ctx, key)
		pipe.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		slog.Error("rate limit check failed, allowing request", "key", key, "error", err)
		return true, 0
	}

	count := int(card.Val())
	return count <= maxRequests, count
}

// Remaining reports the remaining quota for key. Like the underlying Check,
// the read records a hit of its own.
func (l *RedisLimiter) Remaining(ctx context.Context, key string, maxRequests int, window time.Duration) int {
	_, count := l.Check(ctx, key, maxRequests, window)
	return remaining(maxRequests, count)
}
