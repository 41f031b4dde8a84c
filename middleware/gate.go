package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/sumanize/sumanize"
)

// SignInPath is where unauthenticated page requests are redirected.
const SignInPath = "/auth/signin"

type verdictContextKey struct{}

// VerdictFromContext returns the authorization verdict the [Gate] stored for
// this request.
func VerdictFromContext(ctx context.Context) (sumanize.Verdict, bool) {
	v, ok := ctx.Value(verdictContextKey{}).(sumanize.Verdict)
	return v, ok
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (sumanize.Identity, bool) {
	v, ok := VerdictFromContext(ctx)
	if !ok || !v.Authenticated || v.Identity.ID == "" {
		return sumanize.Identity{}, false
	}
	return v.Identity, true
}

// Gate returns middleware that authorizes every request through engine.
// Allowed requests proceed with the verdict in the context; denied requests
// are answered uniformly without reaching the wrapped handler.
func Gate(engine *sumanize.Engine) func(http.Handler) http.Handler {
	cookieName := sumanize.DefaultSessionCookieName
	if name := engine.Config().Cookie.Name; name != "" {
		cookieName = name
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := sumanize.WithClientIP(r.Context(), clientIP(r))
			ctx = sumanize.WithUserAgent(ctx, r.UserAgent())

			verdict := engine.Authorize(ctx, requestDescriptor(r, cookieName))
			if !verdict.Authenticated {
				deny(w, r)
				return
			}

			ctx = context.WithValue(ctx, verdictContextKey{}, verdict)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestDescriptor flattens the credential carriers into the explicit input
// the Engine authorizes. The cookie jar and header map never cross the
// package boundary.
func requestDescriptor(r *http.Request, cookieName string) sumanize.Request {
	req := sumanize.Request{
		Path:                r.URL.Path,
		AuthorizationHeader: r.Header.Get("Authorization"),
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		req.CookieCredential = cookie.Value
	}
	return req
}

// deny renders the uniform unauthenticated response: API callers get a JSON
// 401, browsers get a redirect to the sign-in page.
func deny(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthenticated"}`))
		return
	}
	http.Redirect(w, r, SignInPath, http.StatusFound)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
