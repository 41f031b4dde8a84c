package sumanize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sumanize/sumanize/internal/rate"
	"github.com/sumanize/sumanize/internal/syncq"
	"github.com/sumanize/sumanize/token"
)

// livenessStore is the slice of the session cache the engine depends on.
// Satisfied by *session.Cache; tests substitute counting fakes.
type livenessStore interface {
	MarkLive(ctx context.Context, identity string, ttl time.Duration) error
	IsLive(ctx context.Context, identity string) (bool, error)
	Extend(ctx context.Context, identity string, ttl time.Duration) error
	Revoke(ctx context.Context, identity string) error
}

// usageStore is the slice of the daily quota limiter the engine depends on.
type usageStore interface {
	Allow(ctx context.Context, identity string) error
	Used(ctx context.Context, identity string) (int, error)
	Remaining(ctx context.Context, identity string) (int, error)
}

// IdentityProvider verifies primary credentials (email and password) against
// the authoritative user store. The engine never sees password hashes; the
// provider owns that entirely.
type IdentityProvider interface {
	Authenticate(ctx context.Context, email, password string) (Identity, error)
}

// Engine ties the credential codec, the session liveness cache, the usage
// quota, and the observability plumbing into the session-authentication
// contract: Login establishes sessions, Authorize gates requests, Logout
// revokes.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config           Config
	codec            *token.Codec
	sessions         livenessStore
	usage            usageStore
	identityProvider IdentityProvider
	sync             *syncq.Queue
	audit            *auditDispatcher
	metrics          *Metrics
}

// Close drains the audit dispatcher and the usage-sync queue. The Redis
// client is owned by the caller and is not closed here.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
	if e.sync != nil {
		e.sync.Close()
	}
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return e.config
}

// Authorize classifies and authenticates one request.
//
// Paths that do not require a session return an anonymous authenticated
// verdict without touching the credential or the cache. Protected paths run
// the full pipeline: extract the credential (cookie first, bearer header as
// fallback), verify signature and expiration, confirm liveness, and slide
// the session TTL. Any failure yields an unauthenticated verdict whose
// Reason is one of the sentinel taxonomy errors; callers must render all of
// them identically.
//
//	Performance: protected-path happy case is one Verify plus two Redis commands.
func (e *Engine) Authorize(ctx context.Context, req Request) Verdict {
	if e == nil {
		return Verdict{Reason: ErrEngineNotReady}
	}

	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricAuthorizeLatency, time.Since(start))
		}()
	}

	if !RouteRequiresAuth(req.Path) {
		return Verdict{Authenticated: true}
	}

	credential, err := credentialFrom(req)
	if err != nil {
		// No credential: deny without a single cache call.
		return e.deny(ctx, req.Path, err)
	}

	identity, err := e.CheckCredential(ctx, credential)
	if err != nil {
		return e.deny(ctx, req.Path, err)
	}

	e.metrics.Inc(MetricAuthorizeAllowed)
	return Verdict{Authenticated: true, Identity: identity}
}

// CheckCredential runs the credential pipeline without route classification:
// verify, confirm liveness, slide the TTL. Used by Authorize and by
// endpoints such as the identity introspection handler that sit on an open
// route prefix but still want to know who is calling.
func (e *Engine) CheckCredential(ctx context.Context, credential string) (Identity, error) {
	if e == nil {
		return Identity{}, ErrEngineNotReady
	}
	if credential == "" {
		return Identity{}, ErrMissingCredential
	}

	claims, err := e.codec.Verify(credential)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return Identity{}, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	live, err := e.sessions.IsLive(ctx, claims.Subject)
	if err != nil {
		e.metrics.Inc(MetricCacheUnavailable)
		return Identity{}, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	if !live {
		return Identity{}, ErrRevokedOrNotLive
	}

	// Sliding expiration: every validated request pushes the liveness window
	// forward. A failure here fails closed; authenticated traffic must not
	// outlive the cache's ability to revoke it.
	if err := e.sessions.Extend(ctx, claims.Subject, e.config.Session.TTL); err != nil {
		e.metrics.Inc(MetricCacheUnavailable)
		return Identity{}, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	return Identity{ID: claims.Subject, Email: claims.Email}, nil
}

func (e *Engine) deny(ctx context.Context, path string, reason error) Verdict {
	e.metrics.Inc(MetricAuthorizeDenied)
	e.audit.Emit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditEventAuthorizeDenied,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Path:      path,
		Success:   false,
		Error:     reason.Error(),
	})
	return Verdict{Reason: reason}
}

// credentialFrom applies the fixed extraction precedence: the cookie wins,
// the bearer header is the fallback, and the two are never merged. A header
// that is present but not a bearer credential counts as absent.
func credentialFrom(req Request) (string, error) {
	if req.CookieCredential != "" {
		return req.CookieCredential, nil
	}

	header := strings.TrimSpace(req.AuthorizationHeader)
	const scheme = "Bearer "
	if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
		if credential := strings.TrimSpace(header[len(scheme):]); credential != "" {
			return credential, nil
		}
	}

	return "", ErrMissingCredential
}

// AllowUsage consumes one unit of identity's daily summarization budget.
// Returns [ErrUsageLimited] when the budget is exhausted and
// [ErrCacheUnavailable] when the quota backend is unreachable.
func (e *Engine) AllowUsage(ctx context.Context, identity string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	err := e.usage.Allow(ctx, identity)
	switch {
	case err == nil:
		e.metrics.Inc(MetricUsageAllowed)
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		e.metrics.Inc(MetricUsageDenied)
		e.audit.Emit(ctx, AuditEvent{
			Timestamp: time.Now(),
			EventType: AuditEventUsageDenied,
			Identity:  identity,
			IP:        clientIPFromContext(ctx),
			Success:   false,
			Error:     ErrUsageLimited.Error(),
		})
		return ErrUsageLimited
	default:
		e.metrics.Inc(MetricCacheUnavailable)
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
}

// UsageRemaining returns identity's remaining daily budget.
func (e *Engine) UsageRemaining(ctx context.Context, identity string) (int, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}
	remaining, err := e.usage.Remaining(ctx, identity)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}
	return remaining, nil
}

// RecordUsage hands a completed summarization to the async sync queue for
// durable accounting. A missing queue makes this a no-op.
func (e *Engine) RecordUsage(ctx context.Context, identity string, summaries int, inputBytes int64) {
	if e == nil || e.sync == nil {
		return
	}
	e.sync.Enqueue(ctx, syncq.Record{
		Identity:   identity,
		Summaries:  summaries,
		InputBytes: inputBytes,
		ObservedAt: time.Now(),
	})
	e.metrics.Inc(MetricUsageSyncEnqueued)
}

// AuditDropped returns how many audit events were discarded under
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// SyncDropped returns how many usage records were discarded under
// backpressure.
func (e *Engine) SyncDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.sync.Dropped()
}

// SyncRetries returns how many usage-sync redelivery attempts were made.
func (e *Engine) SyncRetries() uint64 {
	if e == nil {
		return 0
	}
	return e.sync.Retries()
}

// SyncFailed returns how many usage records exhausted their delivery
// attempts.
func (e *Engine) SyncFailed() uint64 {
	if e == nil {
		return 0
	}
	return e.sync.Failed()
}

// MetricsSnapshot returns a point-in-time copy of every engine metric.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}
