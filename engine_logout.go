package sumanize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sumanize/sumanize/token"
)

// Logout revokes the session bound to credential. Revocation is idempotent,
// and an expired credential still revokes: the subject is recovered from the
// unverified claims so a stale tab's logout clears server-side state. Only a
// credential whose structure or signature is outright invalid is refused.
func (e *Engine) Logout(ctx context.Context, credential string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if credential == "" {
		return ErrMissingCredential
	}

	claims, err := e.codec.Verify(credential)
	if err != nil {
		if !errors.Is(err, token.ErrExpired) {
			return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		claims, err = token.DecodeUnverified(credential)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
	}

	if err := e.sessions.Revoke(ctx, claims.Subject); err != nil {
		e.metrics.Inc(MetricCacheUnavailable)
		return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
	}

	e.metrics.Inc(MetricLogout)
	e.audit.Emit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditEventLogout,
		Identity:  claims.Subject,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   true,
	})

	return nil
}
