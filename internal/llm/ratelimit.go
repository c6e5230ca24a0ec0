package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimiter enforces two bounds on outbound requests: a cap on
// requests in any one-minute window, and a minimum cooldown between
// consecutive requests. Callers block in Wait until both are
// satisfied.
type RateLimiter struct {
	mu sync.Mutex

	maxPerMinute int
	cooldown     time.Duration

	requestCount int
	windowStart  time.Time
	lastRequest  time.Time

	// now and sleep are injectable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRateLimiter creates a limiter. maxPerMinute <= 0 disables the
// window cap; cooldown <= 0 disables request spacing.
func NewRateLimiter(maxPerMinute int, cooldown time.Duration) *RateLimiter {
	return &RateLimiter{
		maxPerMinute: maxPerMinute,
		cooldown:     cooldown,
		now:          time.Now,
		sleep:        sleepCtx,
	}
}

// Wait blocks until the next request is allowed, then records it.
// Returns early with the context error if ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	if r.windowStart.IsZero() {
		r.windowStart = now
	}

	// Reset the counter once the window has elapsed.
	if now.Sub(r.windowStart) >= time.Minute {
		r.requestCount = 0
		r.windowStart = now
	}

	if r.maxPerMinute > 0 && r.requestCount >= r.maxPerMinute {
		wait := time.Minute - now.Sub(r.windowStart)
		if wait > 0 {
			if err := r.sleep(ctx, wait); err != nil {
				return err
			}
		}
		now = r.now()
		r.requestCount = 0
		r.windowStart = now
	}

	if r.cooldown > 0 && !r.lastRequest.IsZero() {
		sinceLast := now.Sub(r.lastRequest)
		if sinceLast < r.cooldown {
			if err := r.sleep(ctx, r.cooldown-sinceLast); err != nil {
				return err
			}
			now = r.now()
		}
	}

	r.requestCount++
	r.lastRequest = now
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
