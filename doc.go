// Package sumanize implements the session-authentication core of the
// Sumanize web application: signed time-limited credentials, a Redis-backed
// session liveness cache with sliding expiration, and an authorization gate
// that classifies request paths against a fixed route table.
//
// The [Engine] is the single entry point. Construct it with the fluent
// builder:
//
//	engine, err := sumanize.New().
//		WithConfig(cfg).
//		WithRedis(redisClient).
//		WithIdentityProvider(users).
//		Build()
//
// and wire it into HTTP serving through the middleware package.
//
// # Security model
//
// A credential proves who the caller is; the liveness cache decides whether
// that proof is still honored. Both checks must pass. Deleting the cache
// entry is the only revocation mechanism, which is why every cache failure
// on the authorization path fails closed, and why external responses never
// distinguish the taxonomy errors: missing, invalid, expired, and revoked
// all render as the same unauthenticated response.
//
// # Architecture boundaries
//
//   - token knows nothing about Redis or HTTP.
//   - session stores liveness only, never session payload.
//   - The engine owns the pipeline ordering; HTTP concerns (cookies,
//     redirects, status codes) live in the middleware and handler packages.
//
// # What this package must NOT do
//
//   - Store or compare passwords (the IdentityProvider owns that).
//   - Reveal to an end user which taxonomy error denied a request.
package sumanize
