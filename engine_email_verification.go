package authkit

import (
	"context"
	"fmt"

	"github.com/yogendrarana/authkit/otp"
)

// VerifyEmail checks the email-verification code, flips the account to
// verified, and consumes the code. The check/update/consume order makes a
// crash between the two writes recoverable: an interrupted verification
// leaves the code active, and repeating it flips the already-true flag again
// before the code is discarded. After consumption a second attempt fails with
// [otp.ErrNotFound].
func (e *Engine) VerifyEmail(ctx context.Context, req VerifyOtpRequest) (*Result, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if req.Email == "" || req.Code == "" {
		return nil, fmt.Errorf("%w: email and code are required", ErrInvalidRequest)
	}

	if _, err := e.codes.Check(ctx, req.Email, otp.PurposeEmailVerification, req.Code); err != nil {
		e.emitAudit(ctx, auditEventEmailVerification, false, "", req.Email, err, nil)
		return nil, err
	}

	if err := e.store.UpdateUserVerified(ctx, req.Email, true); err != nil {
		return nil, err
	}

	if err := e.codes.Consume(ctx, req.Email, otp.PurposeEmailVerification); err != nil {
		return nil, err
	}

	e.emitAudit(ctx, auditEventEmailVerification, true, "", req.Email, nil, nil)

	return &Result{
		Success: true,
		Message: "Email verified successfully",
	}, nil
}
