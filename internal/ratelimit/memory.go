package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter implements Limiter with per-key timestamp lists guarded by a
// single mutex. It sees only its own process: in a multi-instance deployment
// each instance enforces the limit independently, so it must never be the
// sole mechanism there.
type MemoryLimiter struct {
	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

// NewMemoryLimiter creates an in-process limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		hits: make(map[string][]time.Time),
		now:  time.Now,
	}
}

// Check records a hit for key and counts the hits still inside the window.
func (l *MemoryLimiter) Check(ctx context.Context, key string, maxRequests int, window time.Duration) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)

	kept := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	l.hits[key] = kept

	count := len(kept)
	return count <= maxRequests, count
}

// Remaining reports the remaining quota for key, recording a hit of its own.
func (l *MemoryLimiter) Remaining(ctx context.Context, key string, maxRequests int, window time.Duration) int {
	_, count := l.Check(ctx, key, maxRequests, window)
	return remaining(maxRequests, count)
}
