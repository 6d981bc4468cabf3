package authkit

import (
	"context"
	"time"

	"github.com/yogendrarana/authkit/otp"
	"github.com/yogendrarana/authkit/password"
	"github.com/yogendrarana/authkit/token"
)

// Engine composes the hasher, one-time-code engine, and token issuer into the
// signup, signin, email-verification, and password-recovery flows. Every flow
// is a single-pass request/response sequence: each collaborator call completes
// before the next begins, and no flow spawns background work besides audit
// dispatch.
//
// Engines are built once through [Builder.Build] and are safe for concurrent
// use afterward.
type Engine struct {
	config Config
	store  CredentialStore
	mailer Mailer
	policy PasswordPolicy
	hasher *password.Hasher
	codes  *otp.Engine
	tokens *token.Issuer
	audit  *auditDispatcher
}

// Close stops the audit dispatcher after draining queued events. The engine
// itself holds no other resources.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were discarded because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) ready() bool {
	return e != nil && e.store != nil && e.hasher != nil && e.codes != nil && e.tokens != nil
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID, email string, err error, metadataFn func() map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metadataFn != nil {
		event.Metadata = metadataFn()
	}

	e.audit.Emit(ctx, event)
}

// issueSession mints an access/refresh pair for userID and upserts the
// refresh hash, replacing any previously stored hash for that user. This is
// the single place where a prior refresh token is superseded.
func (e *Engine) issueSession(ctx context.Context, userID string) (accessToken, refreshToken string, err error) {
	accessToken, err = e.tokens.IssueAccess(userID)
	if err != nil {
		return "", "", err
	}

	pair, err := e.tokens.IssueRefresh()
	if err != nil {
		return "", "", err
	}

	if err := e.store.UpsertRefreshTokenHash(ctx, userID, pair.Hash); err != nil {
		return "", "", err
	}

	return accessToken, pair.Token, nil
}

// dispatchMail sends a one-time code. Delivery is fire-and-forget: a failure
// is audited but never fails the flow, and the persisted code stays in place.
func (e *Engine) dispatchMail(ctx context.Context, to, subject, body string) {
	if e.mailer == nil {
		return
	}
	if err := e.mailer.Send(ctx, e.config.Mail.Sender, to, subject, body); err != nil {
		e.emitAudit(ctx, auditEventMailDispatchFailed, false, "", to, err, func() map[string]string {
			return map[string]string{
				"subject": subject,
			}
		})
	}
}
