package sumanize

import "errors"

// Sentinel errors returned by the Engine. Every authorization failure maps
// onto exactly one of the credential-taxonomy errors below; externally they
// all collapse to the same unauthenticated response, and the distinction is
// kept for logs, audit events, and metrics only.
var (
	// ErrMissingCredential means neither the session cookie nor a bearer
	// Authorization header carried a credential.
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidSignature means the credential failed structural or
	// signature verification.
	ErrInvalidSignature = errors.New("invalid credential signature")

	// ErrExpired means the credential's embedded expiration is in the past,
	// regardless of whether its signature would otherwise verify.
	ErrExpired = errors.New("credential expired")

	// ErrRevokedOrNotLive means the credential verified but the session
	// cache holds no liveness entry for its subject: the session was revoked
	// or its sliding window lapsed.
	ErrRevokedOrNotLive = errors.New("session revoked or not live")

	// ErrCacheUnavailable means the session cache could not be reached. The
	// Engine fails closed on it; unlike the other taxonomy errors it is also
	// surfaced as an operational warning.
	ErrCacheUnavailable = errors.New("session cache unavailable")

	// ErrInvalidCredentials is returned by Login when the identity provider
	// rejects the supplied email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUsageLimited is returned when an identity's daily summarization
	// budget is exhausted.
	ErrUsageLimited = errors.New("daily usage limit reached")

	// ErrEngineNotReady is returned when an Engine method is invoked on a
	// nil engine or before a required dependency was configured.
	ErrEngineNotReady = errors.New("engine not ready")
)
