package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is returned when the cache backend cannot be reached.
// Callers on the authorization path must treat it as "session not live"
// (fail closed) rather than propagate it as a fatal error.
var ErrRedisUnavailable = errors.New("redis unavailable")

// DefaultTTL is the liveness window applied when a caller passes a
// non-positive TTL: seven days, refreshed on every validated request.
const DefaultTTL = 7 * 24 * time.Hour

const minTTL = time.Second

// Cache is a Redis-backed liveness record keyed by user identity. Presence of
// the key means the identity currently has a live session; the value carries
// no payload. Absence means the session is not live even when a credential's
// signature still verifies — deleting the key is the revocation mechanism.
//
// Cache instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Cache struct {
	redis      redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
}

// NewCache creates a liveness [Cache] backed by the given Redis client.
// prefix sets the Redis key namespace; defaultTTL <= 0 falls back to
// [DefaultTTL].
func NewCache(redisClient redis.UniversalClient, prefix string, defaultTTL time.Duration) *Cache {
	if prefix == "" {
		prefix = "sl"
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Cache{
		redis:      redisClient,
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}
}

func (c *Cache) key(identity string) string {
	return c.prefix + ":" + identity
}

func (c *Cache) ttl(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return c.defaultTTL
	}
	if ttl < minTTL {
		return minTTL
	}
	return ttl
}

// MarkLive idempotently records that identity has a live session for ttl.
// Overwrites any prior TTL.
//
//	Performance: 1 Redis SET.
func (c *Cache) MarkLive(ctx context.Context, identity string, ttl time.Duration) error {
	if identity == "" {
		return errors.New("empty identity")
	}

	if err := c.redis.Set(ctx, c.key(identity), "1", c.ttl(ttl)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// IsLive reports whether identity currently has a live session. A missing
// entry is false; the check reveals existence only, never a payload.
//
//	Performance: 1 Redis EXISTS.
func (c *Cache) IsLive(ctx context.Context, identity string) (bool, error) {
	n, err := c.redis.Exists(ctx, c.key(identity)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return n > 0, nil
}

// Extend resets the TTL without altering existence, implementing sliding
// expiration. Extending a missing entry is a no-op, not an error: concurrent
// revocation must win over a racing extension.
//
//	Performance: 1 Redis EXPIRE.
func (c *Cache) Extend(ctx context.Context, identity string, ttl time.Duration) error {
	if err := c.redis.Expire(ctx, c.key(identity), c.ttl(ttl)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Revoke deletes the liveness entry. Idempotent: revoking a non-existent
// entry is not an error.
//
//	Performance: 1 Redis DEL.
func (c *Cache) Revoke(ctx context.Context, identity string) error {
	if err := c.redis.Del(ctx, c.key(identity)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// TTL returns the remaining liveness window for identity, or zero when the
// entry does not exist. Intended for introspection endpoints and tests.
func (c *Cache) TTL(ctx context.Context, identity string) (time.Duration, error) {
	d, err := c.redis.TTL(ctx, c.key(identity)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (c *Cache) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
