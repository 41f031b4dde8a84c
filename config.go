package sumanize

import (
	"errors"
	"time"

	"github.com/sumanize/sumanize/session"
)

// Config is the full engine configuration tree. Zero values fall back to the
// defaults applied by [DefaultConfig]; Build validates the result before any
// component is constructed.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT     JWTConfig
	Session SessionConfig
	Cookie  CookieConfig
	Usage   UsageConfig
	Sync    SyncConfig
	Audit   AuditConfig
	Metrics MetricsConfig

	// Production toggles production cookie attributes (Secure) and any other
	// behavior that differs between local development and deployment.
	Production bool
}

// JWTConfig configures the credential codec.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	TTL           time.Duration
	SigningMethod string // "hs256" (default) or "ed25519"
	Secret        []byte
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration
}

// SessionConfig configures the Redis-backed liveness cache.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix string
	TTL         time.Duration
}

// CookieConfig configures the session cookie the HTTP layer sets on login.
//
// CookieConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookieConfig struct {
	Name   string
	Domain string
}

// UsageConfig configures the daily summarization quota. DailyLimit <= 0
// disables the quota entirely.
//
// UsageConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type UsageConfig struct {
	DailyLimit  int
	RedisPrefix string
}

// SyncConfig configures the asynchronous usage-sync queue.
//
// SyncConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SyncConfig struct {
	BufferSize  int
	MaxAttempts int
	Backoff     time.Duration
	DropIfFull  bool
}

// AuditConfig configures the async audit dispatcher.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig configures the in-process metric registry.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultSessionCookieName is the fixed name of the session cookie.
const DefaultSessionCookieName = "sumanize_session"

// DefaultDailyLimit is the free-tier summarization budget per UTC day.
const DefaultDailyLimit = 10

// DefaultConfig returns the configuration used when the caller overrides
// nothing: 7-day sliding sessions, HS256 credentials of the same lifetime, a
// 10-per-day usage budget, and audit/metrics enabled with drop-if-full
// buffering.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			TTL:           session.DefaultTTL,
			SigningMethod: "hs256",
			Issuer:        "sumanize",
		},
		Session: SessionConfig{
			RedisPrefix: "sl",
			TTL:         session.DefaultTTL,
		},
		Cookie: CookieConfig{
			Name: DefaultSessionCookieName,
		},
		Usage: UsageConfig{
			DailyLimit:  DefaultDailyLimit,
			RedisPrefix: "au",
		},
		Sync: SyncConfig{
			BufferSize:  256,
			MaxAttempts: 3,
			Backoff:     100 * time.Millisecond,
			DropIfFull:  true,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func defaultConfig() Config {
	return DefaultConfig()
}

// Validate checks cross-field consistency. Key material is validated by the
// codec constructor, not here.
func (c Config) Validate() error {
	if c.JWT.TTL <= 0 {
		return errors.New("JWT.TTL must be positive")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT.Leeway must be between 0 and 2 minutes")
	}
	switch c.JWT.SigningMethod {
	case "hs256", "ed25519":
	default:
		return errors.New("JWT.SigningMethod must be hs256 or ed25519")
	}
	if c.Session.TTL <= 0 {
		return errors.New("Session.TTL must be positive")
	}
	if c.Cookie.Name == "" {
		return errors.New("Cookie.Name must not be empty")
	}
	if c.Sync.MaxAttempts < 0 {
		return errors.New("Sync.MaxAttempts must not be negative")
	}
	if c.Sync.Backoff < 0 {
		return errors.New("Sync.Backoff must not be negative")
	}
	return nil
}

// cloneConfig deep-copies the key material so a caller mutating its own
// slices after Build cannot alter the engine's view.
func cloneConfig(c Config) Config {
	out := c
	out.JWT.Secret = append([]byte(nil), c.JWT.Secret...)
	out.JWT.PrivateKey = append([]byte(nil), c.JWT.PrivateKey...)
	out.JWT.PublicKey = append([]byte(nil), c.JWT.PublicKey...)
	return out
}
