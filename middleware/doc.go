// Package middleware wires the sumanize Engine into net/http serving: the
// authorization [Gate] plus the session cookie helpers used by the login and
// logout handlers.
//
// # Gate behavior
//
// The gate builds a request descriptor from the incoming *http.Request,
// calls Engine.Authorize once per request, and either forwards with the
// verdict in the context or rejects. Rejections are deliberately uniform: a
// JSON 401 for API paths, a redirect to the sign-in page for everything
// else, with no hint of why the credential was refused.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. Route
// classification, credential precedence, and the failure taxonomy all live
// in the Engine; the gate only renders its verdict.
//
// # What this package must NOT do
//
//   - Parse or verify credentials itself.
//   - Access Redis.
//   - Surface the denial reason to the client.
package middleware
