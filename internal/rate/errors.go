package rate

import "errors"

var (
	// ErrRateLimited is returned when an identity's daily usage budget is exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable is returned when the counter backend cannot be reached.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
