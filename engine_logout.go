package authkit

import (
	"context"
	"errors"
	"fmt"
)

// Logout invalidates the refresh token of the user asserted by accessToken.
// Logging out twice is not an error: the second call finds no refresh record
// and still reports success.
func (e *Engine) Logout(ctx context.Context, accessToken string) (*Result, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if accessToken == "" {
		return nil, fmt.Errorf("%w: access token is required", ErrInvalidRequest)
	}

	userID, err := e.tokens.ParseAccess(accessToken)
	if err != nil {
		e.emitAudit(ctx, auditEventLogout, false, "", "", err, nil)
		return nil, err
	}

	if err := e.store.DeleteRefreshTokenHash(ctx, userID); err != nil && !errors.Is(err, ErrRefreshNotFound) {
		return nil, err
	}

	e.emitAudit(ctx, auditEventLogout, true, userID, "", nil, nil)

	return &Result{
		Success: true,
		Message: "Logout successful",
	}, nil
}
