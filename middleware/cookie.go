package middleware

import (
	"net/http"
	"time"

	"github.com/sumanize/sumanize"
)

// SetSessionCookie writes the session cookie carrying credential. HttpOnly
// and Path=/ always; Secure only in production so local development over
// plain HTTP keeps working. MaxAge comes from the login result's credential
// lifetime.
func SetSessionCookie(w http.ResponseWriter, cfg sumanize.Config, credential string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(cfg),
		Value:    credential,
		Path:     "/",
		Domain:   cfg.Cookie.Domain,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   cfg.Production,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie overwrites the session cookie with an empty,
// already-expired value. Serialized as Max-Age=0, which instructs the client
// to discard the cookie immediately.
func ClearSessionCookie(w http.ResponseWriter, cfg sumanize.Config) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(cfg),
		Value:    "",
		Path:     "/",
		Domain:   cfg.Cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Production,
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieName(cfg sumanize.Config) string {
	if cfg.Cookie.Name != "" {
		return cfg.Cookie.Name
	}
	return sumanize.DefaultSessionCookieName
}
