package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Purpose tags a one-time code with the flow it gates. A code is only valid
// for the purpose it was generated under.
type Purpose uint8

const (
	// PurposeEmailVerification gates the unverified -> verified transition.
	PurposeEmailVerification Purpose = iota
	// PurposePasswordReset gates the forgot -> reset transition.
	PurposePasswordReset
)

func (p Purpose) String() string {
	switch p {
	case PurposeEmailVerification:
		return "email_verification"
	case PurposePasswordReset:
		return "password_reset"
	default:
		return "unknown"
	}
}

var (
	// ErrNotFound is returned when no active code exists for (email, purpose).
	ErrNotFound = errors.New("otp not found")
	// ErrMismatch is returned when the candidate code differs from the active one.
	ErrMismatch = errors.New("otp mismatch")
	// ErrExpired is returned when the active code is past its TTL.
	ErrExpired = errors.New("otp expired")
)

// Record is a persisted one-time code. At most one record is active per
// (email, purpose); persisting a new one replaces the previous record.
type Record struct {
	Email     string
	Code      string
	Purpose   Purpose
	CreatedAt time.Time
}

// Store is the persistence surface the engine needs. The repository owned by
// the orchestrator satisfies it.
type Store interface {
	FindActiveOtp(ctx context.Context, email string, purpose Purpose) (*Record, error)
	DeleteOtps(ctx context.Context, email string, purpose Purpose) error
}

// Config controls code shape and lifetime.
type Config struct {
	// Digits is the code length. Valid range is 4..10.
	Digits int
	// TTL bounds code validity from CreatedAt. Zero disables expiry.
	TTL time.Duration
}

// Engine generates codes and validates them against the store. It owns no
// persisted state of its own.
type Engine struct {
	store Store
	cfg   Config
	now   func() time.Time
}

func NewEngine(store Store, cfg Config) (*Engine, error) {
	if store == nil {
		return nil, errors.New("otp: store is required")
	}
	if cfg.Digits < 4 || cfg.Digits > 10 {
		return nil, errors.New("otp: digits must be between 4 and 10")
	}
	if cfg.TTL < 0 {
		return nil, errors.New("otp: ttl must not be negative")
	}

	return &Engine{store: store, cfg: cfg, now: time.Now}, nil
}

// Generate returns a fresh numeric code drawn from crypto/rand. It does not
// persist anything; the caller stores the record.
func (e *Engine) Generate() (string, error) {
	var b strings.Builder
	b.Grow(e.cfg.Digits)

	limit := big.NewInt(10)
	for i := 0; i < e.cfg.Digits; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("otp: generate: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}

// Check validates a candidate against the active record without consuming it.
// An expired record is deleted on sight.
func (e *Engine) Check(ctx context.Context, email string, purpose Purpose, candidate string) (*Record, error) {
	record, err := e.store.FindActiveOtp(ctx, email, purpose)
	if err != nil {
		return nil, err
	}

	if e.cfg.TTL > 0 && e.now().After(record.CreatedAt.Add(e.cfg.TTL)) {
		if err := e.store.DeleteOtps(ctx, email, purpose); err != nil {
			return nil, err
		}
		return nil, ErrExpired
	}

	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(candidate)) != 1 {
		return nil, ErrMismatch
	}

	return record, nil
}

// Consume discards the active record for (email, purpose). The record is
// single-use: callers consume it after the state transition it gates.
func (e *Engine) Consume(ctx context.Context, email string, purpose Purpose) error {
	return e.store.DeleteOtps(ctx, email, purpose)
}

// Verify is Check followed by Consume: the code becomes unusable on success.
func (e *Engine) Verify(ctx context.Context, email string, purpose Purpose, candidate string) (*Record, error) {
	record, err := e.Check(ctx, email, purpose, candidate)
	if err != nil {
		return nil, err
	}
	if err := e.Consume(ctx, email, purpose); err != nil {
		return nil, err
	}
	return record, nil
}
