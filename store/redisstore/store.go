package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yogendrarana/authkit"
	"github.com/yogendrarana/authkit/otp"
)

const defaultPrefix = "ak"

var errStoreUnavailable = errors.New("redis store unavailable")

// Store is a Redis-backed [authkit.CredentialStore].
//
// Key layout under the configured prefix:
//
//	<p>:user:<email>     JSON user record
//	<p>:uid:<id>         id -> email index
//	<p>:otp:<purpose>:<email>  JSON one-time-code record
//	<p>:refresh:<userID> refresh-token hash
//
// One-time-code keys carry an optional server-side TTL on top of the
// engine's check-time expiry, so stale codes do not accumulate.
type Store struct {
	redis  *redis.Client
	prefix string
	otpTTL time.Duration
}

func New(client *redis.Client, prefix string, otpTTL time.Duration) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{
		redis:  client,
		prefix: prefix,
		otpTTL: otpTTL,
	}
}

func (s *Store) userKey(email string) string {
	return s.prefix + ":user:" + email
}

func (s *Store) uidKey(id string) string {
	return s.prefix + ":uid:" + id
}

func (s *Store) otpKey(email string, purpose otp.Purpose) string {
	return s.prefix + ":otp:" + purpose.String() + ":" + email
}

func (s *Store) refreshKey(userID string) string {
	return s.prefix + ":refresh:" + userID
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*authkit.User, error) {
	data, err := s.redis.Get(ctx, s.userKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, authkit.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}

	var user authkit.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*authkit.User, error) {
	email, err := s.redis.Get(ctx, s.uidKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, authkit.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}
	return s.FindUserByEmail(ctx, email)
}

// CreateUser assigns an id when absent and claims the email key with SETNX;
// the atomic claim is what resolves concurrent signups for the same address.
func (s *Store) CreateUser(ctx context.Context, user *authkit.User) (*authkit.User, error) {
	created := *user
	if created.ID == "" {
		created.ID = uuid.NewString()
	}

	data, err := json.Marshal(&created)
	if err != nil {
		return nil, err
	}

	ok, err := s.redis.SetNX(ctx, s.userKey(created.Email), data, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}
	if !ok {
		return nil, authkit.ErrAccountExists
	}

	if err := s.redis.Set(ctx, s.uidKey(created.ID), created.Email, 0).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}

	return &created, nil
}

func (s *Store) UpdateUserVerified(ctx context.Context, email string, verified bool) error {
	return s.updateUser(ctx, email, func(u *authkit.User) {
		u.IsVerified = verified
	})
}

func (s *Store) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	email, err := s.redis.Get(ctx, s.uidKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return authkit.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}

	return s.updateUser(ctx, email, func(u *authkit.User) {
		u.PasswordHash = passwordHash
	})
}

// updateUser rewrites a user record under WATCH so concurrent field updates
// do not clobber each other.
func (s *Store) updateUser(ctx context.Context, email string, mutate func(*authkit.User)) error {
	const maxRetries = 4
	key := s.userKey(email)

	for i := 0; i < maxRetries; i++ {
		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return authkit.ErrUserNotFound
			}
			if err != nil {
				return err
			}

			var user authkit.User
			if err := json.Unmarshal(data, &user); err != nil {
				return err
			}
			mutate(&user)

			updated, err := json.Marshal(&user)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, 0)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, authkit.ErrUserNotFound) {
			return fmt.Errorf("%w: %v", errStoreUnavailable, err)
		}
		return err
	}

	return fmt.Errorf("%w: update contention on %s", errStoreUnavailable, key)
}

// CreateOtp replaces any active record for the same (email, purpose).
func (s *Store) CreateOtp(ctx context.Context, record *otp.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.otpKey(record.Email, record.Purpose), data, s.otpTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}
	return nil
}

func (s *Store) FindActiveOtp(ctx context.Context, email string, purpose otp.Purpose) (*otp.Record, error) {
	data, err := s.redis.Get(ctx, s.otpKey(email, purpose)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, otp.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}

	var record otp.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) DeleteOtps(ctx context.Context, email string, purpose otp.Purpose) error {
	if err := s.redis.Del(ctx, s.otpKey(email, purpose)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}
	return nil
}

func (s *Store) UpsertRefreshTokenHash(ctx context.Context, userID, hash string) error {
	if err := s.redis.Set(ctx, s.refreshKey(userID), hash, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}
	return nil
}

func (s *Store) FindRefreshTokenHash(ctx context.Context, userID string) (string, error) {
	hash, err := s.redis.Get(ctx, s.refreshKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", authkit.ErrRefreshNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}
	return hash, nil
}

func (s *Store) DeleteRefreshTokenHash(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.refreshKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errStoreUnavailable, err)
	}
	return nil
}
