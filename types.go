package sumanize

import "time"

// Identity is the authenticated principal: the stable user ID carried in the
// credential subject plus the email claim. The email is a display convenience
// only; authorization decisions key on ID.
//
// Identity instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Identity struct {
	ID    string
	Email string
}

// Request is the transport-agnostic view of one inbound HTTP request: the
// path to classify plus the two credential carriers in precedence order. The
// middleware package builds it from *http.Request; tests build it directly.
//
// Request instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Request struct {
	// Path is the raw request path used for route classification.
	Path string

	// CookieCredential is the value of the session cookie, or empty when the
	// cookie is absent. It takes precedence over the Authorization header.
	CookieCredential string

	// AuthorizationHeader is the raw Authorization header value. Consulted
	// only when CookieCredential is empty; anything other than a bearer
	// credential counts as no credential at all.
	AuthorizationHeader string
}

// Verdict is the outcome of authorizing one request. Reason is diagnostic
// only: HTTP surfaces must render every unauthenticated verdict identically
// and must never leak which taxonomy error produced it.
type Verdict struct {
	Authenticated bool
	Identity      Identity
	Reason        error
}

// LoginResult carries everything the HTTP layer needs to establish a session
// after a successful login: the signed credential to set as a cookie, the
// authenticated identity, and the lifetimes applied to the credential and the
// server-side liveness entry.
type LoginResult struct {
	Credential    string
	Identity      Identity
	CredentialTTL time.Duration
	SessionTTL    time.Duration
}
