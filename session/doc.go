// Package session provides the Redis-backed liveness cache behind the
// authorization gate.
//
// # Liveness, not state
//
// The cache stores an existence flag per identity with a sliding TTL. It is a
// revocation list and liveness check, deliberately independent of credential
// signature validity: a signed credential for an identity whose entry is
// missing is treated as revoked.
//
// # Architecture boundaries
//
// This package owns the [Cache] (Redis operations). It does NOT interpret
// credentials or enforce authentication policy — those responsibilities
// belong to the Engine.
//
// # What this package must NOT do
//
//   - Import sumanize or token (no upward imports).
//   - Store user payload in cache values (existence check only).
//   - Mask infrastructure failures: every backend error is reported as
//     [ErrRedisUnavailable] so the gate can fail closed and log.
package session
