package authkit

import "errors"

var (
	// ErrAccountExists is returned by Signup when the email is already registered.
	ErrAccountExists = errors.New("account already exists")
	// ErrUserNotFound is returned when no account matches the given email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned by Signin and UpdatePassword on a
	// password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordPolicy wraps failures propagated from the password policy
	// collaborator.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrInvalidRequest is returned when a required request field is empty.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRefreshNotFound is returned when no refresh record exists for a user.
	ErrRefreshNotFound = errors.New("refresh token not found")
	// ErrRefreshInvalid is returned when a presented refresh token does not
	// match the stored hash for the user.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrEngineNotReady is returned when an Engine is used before Build
	// completed.
	ErrEngineNotReady = errors.New("engine not initialized")
)
