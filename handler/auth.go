package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sumanize/sumanize"
	"github.com/sumanize/sumanize/middleware"
)

// AuthHandler serves the /api/auth endpoints. All of them sit on an open
// route prefix, so each one extracts and checks the credential itself
// through the engine.
//
// AuthHandler instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuthHandler struct {
	engine *sumanize.Engine
}

func NewAuthHandler(engine *sumanize.Engine) *AuthHandler {
	return &AuthHandler{engine: engine}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Login verifies the primary credentials, sets the session cookie, and
// returns the identity. Every rejection is the uniform 401 except a cache
// outage, which is a 503: the caller should retry, not re-enter a password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	result, err := h.engine.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, sumanize.ErrCacheUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "temporarily unavailable")
			return
		}
		writeUnauthenticated(w)
		return
	}

	middleware.SetSessionCookie(w, h.engine.Config(), result.Credential, result.CredentialTTL)
	writeJSON(w, http.StatusOK, userResponse{ID: result.Identity.ID, Email: result.Identity.Email})
}

// Logout revokes the server-side session and clears the cookie. The cookie
// is cleared even when revocation is refused; a 503 tells the client the
// server-side entry may still exist.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	credential := credentialFromHTTP(r, h.engine.Config())

	err := h.engine.Logout(r.Context(), credential)
	middleware.ClearSessionCookie(w, h.engine.Config())

	if err != nil && errors.Is(err, sumanize.ErrCacheUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "temporarily unavailable")
		return
	}
	// Missing or invalid credentials still end with a cleared cookie; there
	// is nothing useful to distinguish for the client.
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me returns the identity bound to the presented credential.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authenticate(h.engine, w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: identity.ID, Email: identity.Email})
}

// authenticate runs the credential pipeline for handlers on open route
// prefixes. Writes the uniform 401 (or 503 on cache outage) and returns
// ok=false when the request must not proceed.
func authenticate(engine *sumanize.Engine, w http.ResponseWriter, r *http.Request) (sumanize.Identity, bool) {
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		return identity, true
	}

	identity, err := engine.CheckCredential(r.Context(), credentialFromHTTP(r, engine.Config()))
	if err != nil {
		if errors.Is(err, sumanize.ErrCacheUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "temporarily unavailable")
			return sumanize.Identity{}, false
		}
		writeUnauthenticated(w)
		return sumanize.Identity{}, false
	}
	return identity, true
}

// credentialFromHTTP mirrors the gate's extraction precedence at the
// handler level: named cookie first, bearer header as fallback.
func credentialFromHTTP(r *http.Request, cfg sumanize.Config) string {
	if cookie, err := r.Cookie(cfg.Cookie.Name); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const scheme = "Bearer "
	if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
		return strings.TrimSpace(header[len(scheme):])
	}
	return ""
}
