//go:build integration
// +build integration

package test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sumanize/sumanize"
	"github.com/sumanize/sumanize/handler"
	"github.com/sumanize/sumanize/summarize"
)

type stubCompleter struct{}

func (stubCompleter) Complete(_ context.Context, _ string) (string, error) {
	return "## Summary\n\n- stub", nil
}

func newHTTPFlow(t *testing.T) (http.Handler, *sumanize.Engine, func()) {
	t.Helper()

	engine, _, cleanup := newIntegrationEngine(t, nil)

	service, err := summarize.NewService(summarize.ServiceConfig{}, stubCompleter{}, summarize.NewMemoryStore(), engine)
	if err != nil {
		cleanup()
		t.Fatalf("NewService failed: %v", err)
	}

	return handler.NewRouter(engine, service), engine, cleanup
}

func TestHTTPLoginLogoutFlow(t *testing.T) {
	router, engine, cleanup := newHTTPFlow(t)
	defer cleanup()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"alice@example.com","password":"correct-password-123"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from login, got %d: %s", rec.Code, rec.Body.String())
	}

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sumanize.DefaultSessionCookieName {
			session = c
		}
	}
	if session == nil {
		t.Fatal("expected session cookie on login response")
	}
	if session.MaxAge != int((7*24*time.Hour)/time.Second) {
		t.Fatalf("expected 7 day cookie Max-Age, got %d", session.MaxAge)
	}

	// The cookie authenticates a protected page through the gate.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(session)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /api/auth/me, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), testEmail) {
		t.Fatalf("expected identity email in body, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(session)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from logout, got %d", rec.Code)
	}

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sumanize.DefaultSessionCookieName {
			cleared = c
		}
	}
	if cleared == nil || cleared.MaxAge >= 0 || cleared.Value != "" {
		t.Fatalf("expected clearing cookie, got %+v", cleared)
	}

	// The old credential is still signed and unexpired but must be refused
	// everywhere after logout.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(session)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect for revoked credential, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(session)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked credential, got %d", rec.Code)
	}

	snapshot := engine.MetricsSnapshot()
	if snapshot.Counters[sumanize.MetricLoginSuccess] != 1 {
		t.Fatalf("expected one recorded login, got %d", snapshot.Counters[sumanize.MetricLoginSuccess])
	}
	if snapshot.Counters[sumanize.MetricLogout] != 1 {
		t.Fatalf("expected one recorded logout, got %d", snapshot.Counters[sumanize.MetricLogout])
	}
}

func TestHTTPDailyQuotaEnforced(t *testing.T) {
	engine, _, cleanup := newIntegrationEngine(t, func(cfg *sumanize.Config) {
		cfg.Usage.DailyLimit = 1
	})
	defer cleanup()

	service, err := summarize.NewService(summarize.ServiceConfig{}, stubCompleter{}, summarize.NewMemoryStore(), engine)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	router := handler.NewRouter(engine, service)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"alice@example.com","password":"correct-password-123"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d", rec.Code)
	}
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sumanize.DefaultSessionCookieName {
			session = c
		}
	}
	if session == nil {
		t.Fatal("expected session cookie")
	}

	summarizeOnce := func() int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/summarize",
			strings.NewReader(`{"kind":"text","content":"please summarize this"}`))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(session)
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := summarizeOnce(); got != http.StatusOK {
		t.Fatalf("expected first summarize to pass, got %d", got)
	}
	if got := summarizeOnce(); got != http.StatusTooManyRequests {
		t.Fatalf("expected second summarize to hit daily limit, got %d", got)
	}
}
