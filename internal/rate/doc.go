// Package rate provides the Redis-backed daily usage quota behind the
// summarization service.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. One key per
// identity per UTC day ("au:<identity>:<yyyymmdd>"); the key's TTL runs out
// at the next UTC midnight, so the quota resets without a scheduled job.
//
// # What this package must NOT do
//
//   - Decide how a denied request is presented to the user.
//   - Be imported outside the sumanize module.
package rate
