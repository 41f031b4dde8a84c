package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds usage limiter tuning parameters.
type Config struct {
	DailyLimit int
	Prefix     string
}

// Limiter enforces a per-identity daily quota on summarization calls using
// Redis fixed-window counters. The window is the current UTC day; the counter
// key expires at the next UTC midnight, which replaces any external scheduled
// reset job.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
	now    func() time.Time
}

// New creates a usage [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "au"
	}
	return &Limiter{
		redis:  redisClient,
		config: cfg,
		now:    time.Now,
	}
}

// WithClock overrides the limiter's clock. Test hook only.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

func (l *Limiter) key(identity string, day time.Time) string {
	return l.config.Prefix + ":" + identity + ":" + day.UTC().Format("20060102")
}

// Allow consumes one unit of the identity's daily budget. Returns
// [ErrRateLimited] when the budget is exhausted. Infrastructure failures are
// reported as [ErrRedisUnavailable]; the caller decides whether to fail the
// request closed.
func (l *Limiter) Allow(ctx context.Context, identity string) error {
	if l.config.DailyLimit <= 0 {
		return nil
	}

	now := l.now()
	count, err := l.incrementWithWindow(ctx, l.key(identity, now), now)
	if err != nil {
		return err
	}
	if count > int64(l.config.DailyLimit) {
		return ErrRateLimited
	}

	return nil
}

// Used returns how many units the identity consumed in the current window.
// Missing keys return zero.
func (l *Limiter) Used(ctx context.Context, identity string) (int, error) {
	count, err := l.redis.Get(ctx, l.key(identity, l.now())).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count < 0 {
		return 0, nil
	}
	return int(count), nil
}

// Remaining returns the identity's remaining daily budget, floored at zero.
func (l *Limiter) Remaining(ctx context.Context, identity string) (int, error) {
	used, err := l.Used(ctx, identity)
	if err != nil {
		return 0, err
	}

	remaining := l.config.DailyLimit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Reset clears the identity's counter for the current window. Admin
// operation; the normal reset path is the window key expiring on its own.
func (l *Limiter) Reset(ctx context.Context, identity string) error {
	if err := l.redis.Del(ctx, l.key(identity, l.now())).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *Limiter) incrementWithWindow(ctx context.Context, key string, now time.Time) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, untilNextUTCMidnight(now)).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

func untilNextUTCMidnight(now time.Time) time.Duration {
	utc := now.UTC()
	next := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
	d := next.Sub(utc)
	if d < time.Second {
		d = time.Second
	}
	return d
}
