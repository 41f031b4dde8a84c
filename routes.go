package sumanize

import "strings"

// Route classification is a fixed prefix table evaluated against the raw
// request path. Authentication endpoints are checked first so they can never
// be gated behind the session they exist to create; everything not listed in
// either table is reachable without a session.
var (
	unauthenticatedPrefixes = []string{
		"/auth/",
		"/api/auth/",
	}

	protectedPrefixes = []string{
		"/dashboard",
		"/account",
		"/chat",
		"/premium",
		"/settings",
	}
)

// RouteRequiresAuth reports whether path requires an authenticated session.
// The unauthenticated prefixes win over the protected ones, and unknown
// paths default to open: protection is opt-in per prefix.
//
//	Performance: pure string prefix matching, no allocation.
func RouteRequiresAuth(path string) bool {
	for _, prefix := range unauthenticatedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	for _, prefix := range protectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
