package sumanize

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type staticProvider struct {
	identity Identity
	password string
}

func (p staticProvider) Authenticate(_ context.Context, email, password string) (Identity, error) {
	if email != p.identity.Email || password != p.password {
		return Identity{}, errors.New("unknown user or wrong password")
	}
	return p.identity, nil
}

func testProvider() staticProvider {
	return staticProvider{
		identity: Identity{ID: "u-1", Email: "alice@example.com"},
		password: "correct-password-123",
	}
}

func newTestEngine(t *testing.T, mutate func(*Config)) (*Engine, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := DefaultConfig()
	cfg.JWT.Secret = []byte("test-secret-0123456789abcdef")
	cfg.Audit.Enabled = false
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIdentityProvider(testProvider()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	return engine, mr, func() {
		engine.Close()
		rdb.Close()
		mr.Close()
	}
}

func loginTestUser(t *testing.T, engine *Engine) *LoginResult {
	t.Helper()
	result, err := engine.Login(context.Background(), "alice@example.com", "correct-password-123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return result
}
