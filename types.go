package authkit

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/yogendrarana/authkit/otp"
)

// User is the account record persisted by the [CredentialStore]. IsVerified
// starts false at signup and flips on successful email verification; this
// engine never deletes users.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	IsVerified   bool
}

// Result is the uniform envelope every flow returns to the transport layer.
// Token fields are set only by flows that mint tokens.
type Result struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// CredentialStore is the persistence surface the engine consumes. It stores
// user records, one-time-code records, and refresh-token hashes.
//
// Semantics the engine relies on:
//   - FindUserByEmail / FindUserByID return [ErrUserNotFound] for absent rows.
//   - CreateUser returns [ErrAccountExists] on a duplicate email; concurrent
//     signups for the same email are resolved by the store's own uniqueness
//     constraint, not by the engine.
//   - CreateOtp replaces any active record for the same (email, purpose).
//   - FindActiveOtp returns [otp.ErrNotFound] for absent records.
//   - UpsertRefreshTokenHash is last-writer-wins: one record per user,
//     overwritten on every mint.
//   - FindRefreshTokenHash returns [ErrRefreshNotFound] for absent records.
type CredentialStore interface {
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, user *User) (*User, error)
	UpdateUserVerified(ctx context.Context, email string, verified bool) error
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error

	CreateOtp(ctx context.Context, record *otp.Record) error
	FindActiveOtp(ctx context.Context, email string, purpose otp.Purpose) (*otp.Record, error)
	DeleteOtps(ctx context.Context, email string, purpose otp.Purpose) error

	UpsertRefreshTokenHash(ctx context.Context, userID, hash string) error
	FindRefreshTokenHash(ctx context.Context, userID string) (string, error)
	DeleteRefreshTokenHash(ctx context.Context, userID string) error
}

// Mailer delivers outbound mail. Dispatch is fire-and-forget from the
// engine's perspective: a delivery failure does not fail the flow and no
// retry is attempted.
type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type noopMailer struct{}

func (noopMailer) Send(context.Context, string, string, string, string) error { return nil }

// PasswordPolicy validates a candidate password and its confirmation.
// Violations are propagated to the caller verbatim.
type PasswordPolicy interface {
	Validate(password, confirmation string) error
}

// DefaultPasswordPolicy enforces a minimum length and confirmation match.
// Anything stricter belongs to the integrating application.
type DefaultPasswordPolicy struct {
	MinLength int
}

func (p DefaultPasswordPolicy) Validate(password, confirmation string) error {
	minLength := p.MinLength
	if minLength <= 0 {
		minLength = 8
	}

	if utf8.RuneCountInString(password) < minLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrPasswordPolicy, minLength)
	}
	if password != confirmation {
		return fmt.Errorf("%w: password confirmation does not match", ErrPasswordPolicy)
	}
	return nil
}

// SignupRequest is the input for [Engine.Signup].
type SignupRequest struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// SigninRequest is the input for [Engine.Signin].
type SigninRequest struct {
	Email    string
	Password string
}

// VerifyOtpRequest is the input for [Engine.VerifyEmail] and
// [Engine.VerifyPasswordResetOtp].
type VerifyOtpRequest struct {
	Email string
	Code  string
}

// ForgotPasswordRequest is the input for [Engine.ForgotPassword].
type ForgotPasswordRequest struct {
	Email string
}

// ResetPasswordRequest is the input for [Engine.ResetPassword]. Code is the
// password-reset one-time code; carrying it alongside the new password is the
// binding between the verified reset challenge and the account it applies to.
type ResetPasswordRequest struct {
	Email           string
	Code            string
	NewPassword     string
	ConfirmPassword string
}

// UpdatePasswordRequest is the input for [Engine.UpdatePassword].
type UpdatePasswordRequest struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}
