package authkit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yogendrarana/authkit/otp"
)

// Signup creates an unverified account, persists and dispatches an
// email-verification code, and returns a token pair. Existence check, policy
// validation, and user creation complete before any code or token work, so a
// failed validation never leaves partial state beyond the user row itself.
func (e *Engine) Signup(ctx context.Context, req SignupRequest) (*Result, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if req.Email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidRequest)
	}

	if _, err := e.store.FindUserByEmail(ctx, req.Email); err == nil {
		conflict := fmt.Errorf("user with the email %s already exists: %w", req.Email, ErrAccountExists)
		e.emitAudit(ctx, auditEventSignup, false, "", req.Email, conflict, nil)
		return nil, conflict
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	if err := e.policy.Validate(req.Password, req.ConfirmPassword); err != nil {
		e.emitAudit(ctx, auditEventSignup, false, "", req.Email, err, func() map[string]string {
			return map[string]string{
				"reason": "password_policy",
			}
		})
		return nil, err
	}

	passwordHash, err := e.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	created, err := e.store.CreateUser(ctx, &User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: passwordHash,
		IsVerified:   false,
	})
	if err != nil {
		// A concurrent signup may win the race between the precheck and this
		// insert; the store's uniqueness constraint is authoritative.
		if errors.Is(err, ErrAccountExists) {
			err = fmt.Errorf("user with the email %s already exists: %w", req.Email, ErrAccountExists)
		}
		e.emitAudit(ctx, auditEventSignup, false, "", req.Email, err, nil)
		return nil, err
	}

	code, err := e.codes.Generate()
	if err != nil {
		return nil, err
	}
	if err := e.store.CreateOtp(ctx, &otp.Record{
		Email:     created.Email,
		Code:      code,
		Purpose:   otp.PurposeEmailVerification,
		CreatedAt: time.Now(),
	}); err != nil {
		return nil, err
	}
	e.dispatchMail(ctx, created.Email, "Email verification", "Your OTP token is "+code)

	accessToken, refreshToken, err := e.issueSession(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	e.emitAudit(ctx, auditEventSignup, true, created.ID, created.Email, nil, nil)

	return &Result{
		Success:      true,
		Message:      "Account created successfully",
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
