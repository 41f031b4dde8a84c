package sumanize

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Login verifies the primary credentials through the identity provider,
// issues a signed credential, and marks the session live in the cache. The
// returned [LoginResult] carries the credential and the cookie lifetime; the
// HTTP layer owns actually setting the cookie.
//
// A cache failure aborts the login: a credential whose session was never
// recorded would be rejected by every subsequent Authorize anyway.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if e.identityProvider == nil {
		return nil, fmt.Errorf("%w: no identity provider configured", ErrEngineNotReady)
	}

	identity, err := e.identityProvider.Authenticate(ctx, email, password)
	if err != nil {
		e.metrics.Inc(MetricLoginFailure)
		e.audit.Emit(ctx, AuditEvent{
			Timestamp: time.Now(),
			EventType: AuditEventLogin,
			IP:        clientIPFromContext(ctx),
			UserAgent: userAgentFromContext(ctx),
			Success:   false,
			Error:     ErrInvalidCredentials.Error(),
			Metadata:  map[string]string{"email": email},
		})
		if errors.Is(err, ErrCacheUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if identity.ID == "" {
		return nil, fmt.Errorf("%w: provider returned empty identity", ErrInvalidCredentials)
	}

	credential, err := e.codec.Issue(identity.ID, identity.Email, e.config.JWT.TTL)
	if err != nil {
		e.metrics.Inc(MetricLoginFailure)
		return nil, err
	}

	if err := e.sessions.MarkLive(ctx, identity.ID, e.config.Session.TTL); err != nil {
		e.metrics.Inc(MetricCacheUnavailable)
		e.metrics.Inc(MetricLoginFailure)
		return nil, fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	e.metrics.Inc(MetricLoginSuccess)
	e.audit.Emit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditEventLogin,
		Identity:  identity.ID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   true,
	})

	return &LoginResult{
		Credential:    credential,
		Identity:      identity,
		CredentialTTL: e.config.JWT.TTL,
		SessionTTL:    e.config.Session.TTL,
	}, nil
}
