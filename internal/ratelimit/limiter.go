// Package ratelimit provides sliding-window admission control backed by Redis
// or an in-process fallback.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Limiter bounds how many requests an identity may make within a rolling window.
type Limiter interface {
	// Check records a request attempt under key and reports whether it is
	// allowed together with the number of requests currently in the window,
	// the new one included. The boundary is inclusive: the maxRequests-th
	// request is still allowed.
	Check(ctx context.Context, key string, maxRequests int, window time.Duration) (allowed bool, count int)

	// Remaining reports how many further requests key may make within the
	// window. The read itself counts as a request, matching Check.
	Remaining(ctx context.Context, key string, maxRequests int, window time.Duration) int
}

// AdmissionError reports a submission rejected by the limiter.
type AdmissionError struct {
	Key        string
	Limit      int
	Window     time.Duration
	Count      int
	RetryAfter time.Duration
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d requests in %s (max %d)", e.Count, e.Window, e.Limit)
}

// remaining derives the remaining quota from a check result.
func remaining(maxRequests, count int) int {
	if count >= maxRequests {
		return 0
	}
	return maxRequests - count
}
