package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yogendrarana/authkit"
	"github.com/yogendrarana/authkit/otp"
)

// Store is a PostgreSQL-backed [authkit.CredentialStore] over a pgx pool.
// Email uniqueness and the one-record-per-(email, purpose) /
// one-record-per-user invariants are enforced by unique constraints and
// ON CONFLICT upserts, so concurrent writers resolve at the database.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*authkit.User, error) {
	return s.findUser(ctx, `
		SELECT id, email, name, password_hash, is_verified
		FROM users
		WHERE email = $1
	`, email)
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*authkit.User, error) {
	return s.findUser(ctx, `
		SELECT id, email, name, password_hash, is_verified
		FROM users
		WHERE id = $1
	`, id)
}

func (s *Store) findUser(ctx context.Context, query, arg string) (*authkit.User, error) {
	var user authkit.User

	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.IsVerified,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, authkit.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *authkit.User) (*authkit.User, error) {
	created := *user
	if created.ID == "" {
		created.ID = uuid.NewString()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, name, password_hash, is_verified)
		VALUES ($1, $2, $3, $4, $5)
	`, created.ID, created.Email, created.Name, created.PasswordHash, created.IsVerified)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, authkit.ErrAccountExists
		}
		return nil, err
	}

	return &created, nil
}

func (s *Store) UpdateUserVerified(ctx context.Context, email string, verified bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET is_verified = $2 WHERE email = $1
	`, email, verified)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return authkit.ErrUserNotFound
	}
	return nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2 WHERE id = $1
	`, userID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return authkit.ErrUserNotFound
	}
	return nil
}

// CreateOtp replaces the active record for (email, purpose) in one statement.
func (s *Store) CreateOtp(ctx context.Context, record *otp.Record) error {
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO otps (email, code, purpose, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email, purpose) DO UPDATE
		SET code = EXCLUDED.code, created_at = EXCLUDED.created_at
	`, record.Email, record.Code, int16(record.Purpose), createdAt)
	return err
}

func (s *Store) FindActiveOtp(ctx context.Context, email string, purpose otp.Purpose) (*otp.Record, error) {
	record := otp.Record{Email: email, Purpose: purpose}

	var storedPurpose int16
	err := s.pool.QueryRow(ctx, `
		SELECT email, code, purpose, created_at
		FROM otps
		WHERE email = $1 AND purpose = $2
	`, email, int16(purpose)).Scan(&record.Email, &record.Code, &storedPurpose, &record.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, otp.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (s *Store) DeleteOtps(ctx context.Context, email string, purpose otp.Purpose) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM otps WHERE email = $1 AND purpose = $2
	`, email, int16(purpose))
	return err
}

func (s *Store) UpsertRefreshTokenHash(ctx context.Context, userID, hash string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET token_hash = EXCLUDED.token_hash
	`, userID, hash)
	return err
}

func (s *Store) FindRefreshTokenHash(ctx context.Context, userID string) (string, error) {
	var hash string

	err := s.pool.QueryRow(ctx, `
		SELECT token_hash FROM refresh_tokens WHERE user_id = $1
	`, userID).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", authkit.ErrRefreshNotFound
	}
	if err != nil {
		return "", err
	}

	return hash, nil
}

func (s *Store) DeleteRefreshTokenHash(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM refresh_tokens WHERE user_id = $1
	`, userID)
	return err
}
