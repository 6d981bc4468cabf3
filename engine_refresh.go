package authkit

import (
	"context"
	"errors"
	"fmt"
)

// Refresh exchanges a valid refresh token for a new token pair. The presented
// cleartext is matched against the stored hash for the user; on success the
// new pair's hash replaces the old one, so the presented token dies with the
// exchange.
func (e *Engine) Refresh(ctx context.Context, userID, refreshToken string) (*Result, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if userID == "" || refreshToken == "" {
		return nil, fmt.Errorf("%w: user id and refresh token are required", ErrInvalidRequest)
	}

	storedHash, err := e.store.FindRefreshTokenHash(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRefreshNotFound) {
			err = ErrRefreshInvalid
		}
		e.emitAudit(ctx, auditEventRefresh, false, userID, "", err, nil)
		return nil, err
	}

	ok, err := e.tokens.VerifyRefresh(storedHash, refreshToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.emitAudit(ctx, auditEventRefresh, false, userID, "", ErrRefreshInvalid, nil)
		return nil, ErrRefreshInvalid
	}

	accessToken, newRefreshToken, err := e.issueSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, auditEventRefresh, true, userID, "", nil, nil)

	return &Result{
		Success:      true,
		Message:      "Token refreshed successfully",
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}
