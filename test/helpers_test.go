//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sumanize/sumanize"
)

const (
	testEmail    = "alice@example.com"
	testPassword = "correct-password-123"
	testUserID   = "u-1"
)

type staticProvider struct{}

func (staticProvider) Authenticate(_ context.Context, email, password string) (sumanize.Identity, error) {
	if email != testEmail || password != testPassword {
		return sumanize.Identity{}, errors.New("invalid credentials")
	}
	return sumanize.Identity{ID: testUserID, Email: testEmail}, nil
}

func newIntegrationEngine(t *testing.T, mutate func(*sumanize.Config)) (*sumanize.Engine, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	cfg := sumanize.DefaultConfig()
	cfg.JWT.Secret = []byte("integration-secret-0123456789ab")
	cfg.Audit.Enabled = false
	if mutate != nil {
		mutate(&cfg)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	engine, err := sumanize.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIdentityProvider(staticProvider{}).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return engine, mr, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func sessionKey(engine *sumanize.Engine, identity string) string {
	return engine.Config().Session.RedisPrefix + ":" + identity
}

func within(d, target, slack time.Duration) bool {
	return d > target-slack && d <= target+slack
}
