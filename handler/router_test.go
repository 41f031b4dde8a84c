package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sumanize/sumanize"
	"github.com/sumanize/sumanize/summarize"
)

type staticProvider struct{}

func (staticProvider) Authenticate(_ context.Context, email, password string) (sumanize.Identity, error) {
	if email == "alice@example.com" && password == "correct-password-123" {
		return sumanize.Identity{ID: "u-1", Email: email}, nil
	}
	return sumanize.Identity{}, errors.New("unknown user or wrong password")
}

type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, _ string) (string, error) {
	return "# Summary\n\n- point", nil
}

func newAPITest(t *testing.T, mutate func(*sumanize.Config)) (http.Handler, *sumanize.Engine, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := sumanize.DefaultConfig()
	cfg.JWT.Secret = []byte("test-secret-0123456789abcdef")
	cfg.Audit.Enabled = false
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := sumanize.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIdentityProvider(staticProvider{}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	service, err := summarize.NewService(summarize.ServiceConfig{}, echoCompleter{}, summarize.NewMemoryStore(), engine)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	return NewRouter(engine, service), engine, func() {
		engine.Close()
		rdb.Close()
		mr.Close()
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}, decorate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if decorate != nil {
		decorate(req)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func loginSession(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/login", loginRequest{
		Email:    "alice@example.com",
		Password: "correct-password-123",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rec.Code, rec.Body.String())
	}

	for _, c := range rec.Result().Cookies() {
		if c.Name == sumanize.DefaultSessionCookieName {
			return c
		}
	}
	t.Fatal("login response missing session cookie")
	return nil
}

func TestLoginSetsSessionCookie(t *testing.T) {
	h, _, done := newAPITest(t, nil)
	defer done()

	cookie := loginSession(t, h)
	if cookie.Value == "" {
		t.Fatal("expected credential in session cookie")
	}
	if !cookie.HttpOnly || cookie.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}
	if cookie.MaxAge != 7*24*60*60 {
		t.Fatalf("expected 7-day Max-Age, got %d", cookie.MaxAge)
	}
}

func TestLoginWrongPasswordIsUniform401(t *testing.T) {
	h, _, done := newAPITest(t, nil)
	defer done()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/login", loginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	}, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	if resp.Error != "unauthenticated" {
		t.Fatalf("rejections must be uniform, got %q", resp.Error)
	}
}

func TestLoginMalformedBody(t *testing.T) {
	h, _, done := newAPITest(t, nil)
	defer done()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMeReturnsIdentity(t *testing.T) {
	h, _, done := newAPITest(t, nil)
	defer done()

	cookie := loginSession(t, h)
	rec := doJSON(t, h, http.MethodGet, "/api/auth/me", nil, func(r *http.Request) {
		r.AddCookie(cookie)
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var user userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if user.ID != "u-1" || user.Email != "alice@example.com" {
		t.Fatalf("unexpected identity %+v", user)
	}
}

func TestMeWithoutSession(t *testing.T) {
	h, _, done := newAPITest(t, nil)
	defer done()

	rec := doJSON(t, h, http.MethodGet, "/api/auth/me", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLogoutClearsCookieAndRevokes(t *testing.T) {
	h, _, done := newAPITest(t, nil)
	defer done()

	cookie := loginSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/auth/logout", nil, func(r *http.Request) {
		r.AddCookie(cookie)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == sumanize.DefaultSessionCookieName && c.Value == "" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("logout must clear the session cookie")
	}

	// The old credential is still cryptographically valid; the session is not.
	rec = doJSON(t, h, http.MethodGet, "/api/auth/me", nil, func(r *http.Request) {
		r.AddCookie(cookie)
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestLogoutWithoutCredentialStillClears(t *testing.T) {
	h, _, done := newAPITest(t, nil)
	defer done()

	rec := doJSON(t, h, http.MethodPost, "/api/auth/logout", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("expected cleared cookie even without a credential")
	}
}

func TestSummarizeRoundTrip(t *testing.T) {
	h, _, done := newAPITest(t, nil)
	defer done()

	cookie := loginSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/summarize", summarize.Input{
		Kind:    summarize.KindText,
		Content: "a long article body",
	}, func(r *http.Request) {
		r.AddCookie(cookie)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var summary summarize.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if summary.ID == "" || summary.Markdown == "" {
		t.Fatalf("unexpected summary %+v", summary)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/summaries", nil, func(r *http.Request) {
		r.AddCookie(cookie)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list struct {
		Summaries []summarize.Summary `json:"summaries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(list.Summaries) != 1 || list.Summaries[0].ID != summary.ID {
		t.Fatalf("unexpected history %+v", list)
	}
}

func TestSummarizeRequiresSession(t *testing.T) {
	h, _, done := newAPITest(t, nil)
	defer done()

	rec := doJSON(t, h, http.MethodPost, "/api/summarize", summarize.Input{
		Kind:    summarize.KindText,
		Content: "body",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSummarizeDailyLimit(t *testing.T) {
	h, _, done := newAPITest(t, func(cfg *sumanize.Config) {
		cfg.Usage.DailyLimit = 1
	})
	defer done()

	cookie := loginSession(t, h)
	withCookie := func(r *http.Request) { r.AddCookie(cookie) }
	input := summarize.Input{Kind: summarize.KindText, Content: "body"}

	if rec := doJSON(t, h, http.MethodPost, "/api/summarize", input, withCookie); rec.Code != http.StatusOK {
		t.Fatalf("first call must pass, got %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/summarize", input, withCookie); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over budget, got %d", rec.Code)
	}
}

func TestSummarizeBadInput(t *testing.T) {
	h, _, done := newAPITest(t, nil)
	defer done()

	cookie := loginSession(t, h)
	rec := doJSON(t, h, http.MethodPost, "/api/summarize", summarize.Input{
		Kind:    summarize.KindYouTube,
		Content: "https://vimeo.com/12345",
	}, func(r *http.Request) {
		r.AddCookie(cookie)
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid link, got %d", rec.Code)
	}
}

func TestProtectedPageRedirectsThroughRouter(t *testing.T) {
	h, _, done := newAPITest(t, nil)
	defer done()

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected gate redirect on protected page, got %d", rec.Code)
	}
}
