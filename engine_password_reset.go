package authkit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yogendrarana/authkit/otp"
)

// ForgotPassword issues a password-reset code for an existing account. Any
// previously issued reset code for the email is purged first, so at most one
// reset code is ever live per address.
func (e *Engine) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*Result, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if req.Email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidRequest)
	}

	if _, err := e.store.FindUserByEmail(ctx, req.Email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			err = fmt.Errorf("user with the email %s does not exist: %w", req.Email, ErrUserNotFound)
		}
		e.emitAudit(ctx, auditEventPasswordResetOtp, false, "", req.Email, err, nil)
		return nil, err
	}

	// CreateOtp already replaces the active record; the explicit purge keeps
	// a stale code from surviving a partial failure between the two writes.
	if err := e.store.DeleteOtps(ctx, req.Email, otp.PurposePasswordReset); err != nil {
		return nil, err
	}

	code, err := e.codes.Generate()
	if err != nil {
		return nil, err
	}
	if err := e.store.CreateOtp(ctx, &otp.Record{
		Email:     req.Email,
		Code:      code,
		Purpose:   otp.PurposePasswordReset,
		CreatedAt: time.Now(),
	}); err != nil {
		return nil, err
	}
	e.dispatchMail(ctx, req.Email, "Password reset OTP", "Your password reset OTP is "+code)

	e.emitAudit(ctx, auditEventPasswordResetOtp, true, "", req.Email, nil, nil)

	return &Result{
		Success: true,
		Message: "Password reset otp sent successfully",
	}, nil
}

// VerifyPasswordResetOtp checks a reset code without consuming it. The
// consuming verification happens inside [Engine.ResetPassword], which takes
// the same code alongside the new password; the code itself is the binding
// between the verified challenge and the account it applies to.
func (e *Engine) VerifyPasswordResetOtp(ctx context.Context, req VerifyOtpRequest) (*Result, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if req.Email == "" || req.Code == "" {
		return nil, fmt.Errorf("%w: email and code are required", ErrInvalidRequest)
	}

	if _, err := e.codes.Check(ctx, req.Email, otp.PurposePasswordReset, req.Code); err != nil {
		return nil, err
	}

	return &Result{
		Success: true,
		Message: "Otp verified successfully",
	}, nil
}

// ResetPassword completes the forgot-password flow: it validates the reset
// code and the new password, persists the new hash, invalidates the user's
// refresh token, and consumes the code.
func (e *Engine) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*Result, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if req.Email == "" || req.Code == "" {
		return nil, fmt.Errorf("%w: email and code are required", ErrInvalidRequest)
	}

	if _, err := e.codes.Check(ctx, req.Email, otp.PurposePasswordReset, req.Code); err != nil {
		e.emitAudit(ctx, auditEventPasswordReset, false, "", req.Email, err, nil)
		return nil, err
	}

	if err := e.policy.Validate(req.NewPassword, req.ConfirmPassword); err != nil {
		return nil, err
	}

	user, err := e.store.FindUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if err := e.rewritePassword(ctx, user.ID, req.NewPassword); err != nil {
		return nil, err
	}

	if err := e.codes.Consume(ctx, req.Email, otp.PurposePasswordReset); err != nil {
		return nil, err
	}

	e.emitAudit(ctx, auditEventPasswordReset, true, user.ID, user.Email, nil, nil)

	return &Result{
		Success: true,
		Message: "Password reset successful",
	}, nil
}

// UpdatePassword changes the password of an authenticated user after
// verifying the current one, then invalidates the user's refresh token.
func (e *Engine) UpdatePassword(ctx context.Context, req UpdatePasswordRequest) (*Result, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if req.UserID == "" || req.CurrentPassword == "" {
		return nil, fmt.Errorf("%w: user id and current password are required", ErrInvalidRequest)
	}

	user, err := e.store.FindUserByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	ok, err := e.hasher.Verify(user.PasswordHash, req.CurrentPassword)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.emitAudit(ctx, auditEventPasswordUpdate, false, user.ID, user.Email, ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	if err := e.policy.Validate(req.NewPassword, req.ConfirmPassword); err != nil {
		return nil, err
	}

	if err := e.rewritePassword(ctx, user.ID, req.NewPassword); err != nil {
		return nil, err
	}

	e.emitAudit(ctx, auditEventPasswordUpdate, true, user.ID, user.Email, nil, nil)

	return &Result{
		Success: true,
		Message: "Password updated successfully",
	}, nil
}

// rewritePassword persists a new password hash and deletes the user's refresh
// record so prior sessions cannot be renewed with the old credential.
func (e *Engine) rewritePassword(ctx context.Context, userID, newPassword string) error {
	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := e.store.UpdateUserPassword(ctx, userID, hash); err != nil {
		return err
	}
	if err := e.store.DeleteRefreshTokenHash(ctx, userID); err != nil && !errors.Is(err, ErrRefreshNotFound) {
		return err
	}
	return nil
}
