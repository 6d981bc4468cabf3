package authkit

import (
	"context"
	"errors"
	"fmt"
)

// Signin verifies credentials and returns a fresh token pair. The refresh
// hash upsert silently supersedes any previously issued refresh token for the
// user: single active refresh token per account.
//
// The unknown-email message names the address, mirroring the upstream
// product's deliberate account-existence disclosure.
func (e *Engine) Signin(ctx context.Context, req SigninRequest) (*Result, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidRequest)
	}

	user, err := e.validateCredentials(ctx, req.Email, req.Password)
	if err != nil {
		e.emitAudit(ctx, auditEventSignin, false, "", req.Email, err, nil)
		return nil, err
	}

	accessToken, refreshToken, err := e.issueSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, auditEventSignin, true, user.ID, user.Email, nil, nil)

	return &Result{
		Success:      true,
		Message:      "Signin successful",
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// validateCredentials looks up the user and checks the password. Lookup and
// verification failures map to distinct errors: unknown email is reported as
// such, a wrong password as ErrInvalidCredentials.
func (e *Engine) validateCredentials(ctx context.Context, email, candidate string) (*User, error) {
	user, err := e.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("user with the email %s does not exist: %w", email, ErrUserNotFound)
		}
		return nil, err
	}

	ok, err := e.hasher.Verify(user.PasswordHash, candidate)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
