package sumanize

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/sumanize/sumanize/internal/rate"
	"github.com/sumanize/sumanize/internal/syncq"
	"github.com/sumanize/sumanize/session"
	"github.com/sumanize/sumanize/token"
)

// Builder assembles an [Engine]. Chain the With* methods and finish with
// Build; a builder is single-use.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	identityProvider IdentityProvider
	auditSink        AuditSink
	usageSyncer      syncq.Syncer

	built bool
}

// New returns a [Builder] seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration tree.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the session cache and the usage
// limiter. Required.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithIdentityProvider sets the credential-verification collaborator used by
// Login. Required when Login is used; an engine without one still serves
// Authorize and Logout.
func (b *Builder) WithIdentityProvider(p IdentityProvider) *Builder {
	b.identityProvider = p
	return b
}

// WithAuditSink sets the destination for audit events. Defaults to a no-op
// sink when auditing is enabled without one.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithUsageSyncer sets the durable-storage collaborator for the usage-sync
// queue. Without one, usage records are counted in Redis only and never
// forwarded.
func (b *Builder) WithUsageSyncer(s syncq.Syncer) *Builder {
	b.usageSyncer = s
	return b
}

// WithMetricsEnabled toggles the in-process metric registry.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles authorization latency histograms.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, constructs every component, and starts
// the background workers. The returned engine must be closed when the
// process shuts down.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	codec, err := token.NewCodec(token.Config{
		TTL:           cfg.JWT.TTL,
		SigningMethod: token.SigningMethod(cfg.JWT.SigningMethod),
		Secret:        cfg.JWT.Secret,
		PrivateKey:    cfg.JWT.PrivateKey,
		PublicKey:     cfg.JWT.PublicKey,
		Issuer:        cfg.JWT.Issuer,
		Audience:      cfg.JWT.Audience,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:   cfg,
		codec:    codec,
		sessions: session.NewCache(b.redis, cfg.Session.RedisPrefix, cfg.Session.TTL),
		usage: rate.New(b.redis, rate.Config{
			DailyLimit: cfg.Usage.DailyLimit,
			Prefix:     cfg.Usage.RedisPrefix,
		}),
		identityProvider: b.identityProvider,
		audit:            newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:          NewMetrics(cfg.Metrics),
	}

	if b.usageSyncer != nil {
		engine.sync = syncq.NewQueue(syncq.Config{
			BufferSize:  cfg.Sync.BufferSize,
			MaxAttempts: cfg.Sync.MaxAttempts,
			Backoff:     cfg.Sync.Backoff,
			DropIfFull:  cfg.Sync.DropIfFull,
		}, b.usageSyncer)
	}

	b.built = true
	return engine, nil
}
