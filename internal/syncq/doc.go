// Package syncq implements the asynchronous usage-sync queue between the
// request path and durable storage.
//
// # Delivery semantics
//
// At-least-once up to a bounded attempt count with exponential backoff.
// Failures are observable: exhausted and dropped records increment counters
// exposed to the metrics layer instead of vanishing.
//
// # Conflict policy
//
// Last write wins on the persisted usage record. Records carry ObservedAt so
// a syncer can reject stale writes, but the queue itself imposes no ordering
// across identities.
//
// # What this package must NOT do
//
//   - Block the request path (Enqueue with DropIfFull never blocks).
//   - Import sumanize or any sibling internal package.
package syncq
