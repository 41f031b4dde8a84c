package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiterTest(t *testing.T, limit int) (*Limiter, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := New(rdb, Config{DailyLimit: limit, Prefix: "au"})
	return limiter, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestAllowWithinBudget(t *testing.T) {
	limiter, _, done := newLimiterTest(t, 3)
	defer done()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := limiter.Allow(ctx, "u-1"); err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
	}

	if err := limiter.Allow(ctx, "u-1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited after budget exhausted, got %v", err)
	}
}

func TestBudgetsAreIndependentPerIdentity(t *testing.T) {
	limiter, _, done := newLimiterTest(t, 1)
	defer done()
	ctx := context.Background()

	if err := limiter.Allow(ctx, "u-1"); err != nil {
		t.Fatalf("allow u-1: %v", err)
	}
	if err := limiter.Allow(ctx, "u-2"); err != nil {
		t.Fatalf("expected u-2 budget untouched by u-1: %v", err)
	}
}

func TestUsedAndRemaining(t *testing.T) {
	limiter, _, done := newLimiterTest(t, 5)
	defer done()
	ctx := context.Background()

	used, err := limiter.Used(ctx, "u-1")
	if err != nil {
		t.Fatalf("used before any call: %v", err)
	}
	if used != 0 {
		t.Fatalf("expected 0 used, got %d", used)
	}

	for i := 0; i < 2; i++ {
		if err := limiter.Allow(ctx, "u-1"); err != nil {
			t.Fatalf("allow: %v", err)
		}
	}

	remaining, err := limiter.Remaining(ctx, "u-1")
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if remaining != 3 {
		t.Fatalf("expected 3 remaining, got %d", remaining)
	}
}

func TestWindowResetsAtUTCMidnight(t *testing.T) {
	limiter, mr, done := newLimiterTest(t, 1)
	defer done()
	ctx := context.Background()

	fixed := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	limiter.WithClock(func() time.Time { return fixed })

	if err := limiter.Allow(ctx, "u-1"); err != nil {
		t.Fatalf("allow: %v", err)
	}
	if err := limiter.Allow(ctx, "u-1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	// One hour later the window key has expired and the clock reads a new day.
	mr.FastForward(time.Hour)
	limiter.WithClock(func() time.Time { return fixed.Add(time.Hour) })

	if err := limiter.Allow(ctx, "u-1"); err != nil {
		t.Fatalf("expected fresh budget after midnight: %v", err)
	}
}

func TestResetClearsCurrentWindow(t *testing.T) {
	limiter, _, done := newLimiterTest(t, 1)
	defer done()
	ctx := context.Background()

	if err := limiter.Allow(ctx, "u-1"); err != nil {
		t.Fatalf("allow: %v", err)
	}
	if err := limiter.Reset(ctx, "u-1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := limiter.Allow(ctx, "u-1"); err != nil {
		t.Fatalf("expected budget restored after reset: %v", err)
	}
}

func TestZeroLimitDisablesLimiting(t *testing.T) {
	limiter, _, done := newLimiterTest(t, 0)
	defer done()
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if err := limiter.Allow(ctx, "u-1"); err != nil {
			t.Fatalf("allow with limiting disabled: %v", err)
		}
	}
}

func TestBackendFailureIsRedisUnavailable(t *testing.T) {
	limiter, _, done := newLimiterTest(t, 1)
	done()
	ctx := context.Background()

	if err := limiter.Allow(ctx, "u-1"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
	if _, err := limiter.Used(ctx, "u-1"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
