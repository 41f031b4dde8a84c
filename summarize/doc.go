// Package summarize turns user input (raw text, extracted document text, or
// a YouTube link) into persisted markdown summaries through an external
// generative-AI endpoint.
//
// # Collaborators
//
// The AI endpoint hides behind [Completer]; durable storage hides behind
// [Store]. Both are injected, so the service itself is deterministic given
// fakes. The daily quota is enforced through [UsageGate] before any remote
// call is made.
//
// # What this package must NOT do
//
//   - Authenticate anyone (callers pass an already-authorized identity).
//   - Talk to Redis.
package summarize
