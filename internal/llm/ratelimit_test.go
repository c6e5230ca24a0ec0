package llm

import (
	"context"
	"testing"
	"time"
)

// fakeClock drives the limiter deterministically: sleeps advance the
// clock instead of blocking.
type fakeClock struct {
	current time.Time
	slept   []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	c.current = c.current.Add(d)
	return nil
}

func testLimiter(maxPerMinute int, cooldown time.Duration) (*RateLimiter, *fakeClock) {
	clock := newFakeClock()
	r := NewRateLimiter(maxPerMinute, cooldown)
	r.now = clock.now
	r.sleep = clock.sleep
	return r, clock
}

func TestRateLimiterFirstRequestImmediate(t *testing.T) {
	r, clock := testLimiter(10, 2*time.Second)

	if err := r.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(clock.slept) != 0 {
		t.Errorf("first request slept %v, want none", clock.slept)
	}
}

func TestRateLimiterCooldownBetweenRequests(t *testing.T) {
	r, clock := testLimiter(10, 2*time.Second)
	ctx := context.Background()

	if err := r.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	clock.current = clock.current.Add(500 * time.Millisecond)
	if err := r.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	if len(clock.slept) != 1 || clock.slept[0] != 1500*time.Millisecond {
		t.Errorf("slept %v, want [1.5s]", clock.slept)
	}
}

func TestRateLimiterNoCooldownAfterGap(t *testing.T) {
	r, clock := testLimiter(10, 2*time.Second)
	ctx := context.Background()

	if err := r.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	clock.current = clock.current.Add(5 * time.Second)
	if err := r.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	if len(clock.slept) != 0 {
		t.Errorf("slept %v, want none", clock.slept)
	}
}

func TestRateLimiterWindowCap(t *testing.T) {
	r, clock := testLimiter(3, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := r.Wait(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if len(clock.slept) != 0 {
		t.Fatalf("slept %v before cap reached", clock.slept)
	}

	// Fourth request must wait out the remainder of the window.
	clock.current = clock.current.Add(10 * time.Second)
	if err := r.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if len(clock.slept) != 1 || clock.slept[0] != 50*time.Second {
		t.Errorf("slept %v, want [50s]", clock.slept)
	}
}

func TestRateLimiterWindowResets(t *testing.T) {
	r, clock := testLimiter(2, 0)
	ctx := context.Background()

	if err := r.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if err := r.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	// A minute later the counter starts fresh.
	clock.current = clock.current.Add(61 * time.Second)
	if err := r.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	if len(clock.slept) != 0 {
		t.Errorf("slept %v after window reset, want none", clock.slept)
	}
}

func TestRateLimiterCancelledContext(t *testing.T) {
	r := NewRateLimiter(1, 0)
	ctx := context.Background()

	if err := r.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := r.Wait(cancelled); err != context.Canceled {
		t.Errorf("wait on cancelled context = %v, want context.Canceled", err)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	r, clock := testLimiter(0, 0)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		if err := r.Wait(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if len(clock.slept) != 0 {
		t.Errorf("slept %v with limits disabled", clock.slept)
	}
}
