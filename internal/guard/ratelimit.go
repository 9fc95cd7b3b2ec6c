package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/attaboy/matchday/internal/domain"
)

// RateLimiter allows at most limit hits per key in any sliding window.
// Keys with no hit inside the window are swept once per window.
type RateLimiter struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	limit     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates a rate limiter with the given limit per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Check records a hit for key unless the key is already at its limit.
func (rl *RateLimiter) Check(_ context.Context, key string) domain.GuardResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)
	if now.Sub(rl.lastSweep) >= rl.window {
		rl.sweepLocked(cutoff)
		rl.lastSweep = now
	}

	recent := trim(rl.hits[key], cutoff)
	if len(recent) >= rl.limit {
		rl.hits[key] = recent
		return domain.GuardResult{
			Allowed:    false,
			Reason:     fmt.Sprintf("at most %d requests per %s", rl.limit, rl.window),
			Guard:      "rate_limiter",
			RetryAfter: recent[0].Add(rl.window).Sub(now),
		}
	}

	rl.hits[key] = append(recent, now)
	return domain.GuardResult{Allowed: true}
}

// Keys returns how many keys currently hold hits.
func (rl *RateLimiter) Keys() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.hits)
}

func (rl *RateLimiter) sweepLocked(cutoff time.Time) {
	for key, hits := range rl.hits {
		if recent := trim(hits, cutoff); len(recent) == 0 {
			delete(rl.hits, key)
		} else {
			rl.hits[key] = recent
		}
	}
}

// trim drops hits at or before cutoff; hits are in ascending order.
func trim(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}
