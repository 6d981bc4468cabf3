package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yogendrarana/authkit/password"
)

// ErrInvalidToken is returned when an access token fails signature or claim
// validation.
var ErrInvalidToken = errors.New("invalid access token")

// Config carries the signing material and lifetimes for token issuance.
// It is injected at construction; nothing here is read from the process
// environment.
type Config struct {
	// Secret signs access tokens with HS256.
	Secret []byte
	// AccessTTL bounds access-token validity.
	AccessTTL time.Duration
	// Issuer is stamped into the iss claim when non-empty.
	Issuer string
}

// AccessClaims is the signed payload of an access token.
type AccessClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// RefreshPair is the result of minting a refresh token. Token is the opaque
// cleartext handed to the caller exactly once; Hash is what gets persisted.
type RefreshPair struct {
	Token string
	Hash  string
}

// Issuer mints signed short-lived access tokens and opaque long-lived refresh
// tokens. Refresh cleartexts are random identifiers, unlinkable to any user
// without the stored hash record.
type Issuer struct {
	cfg    Config
	hasher *password.Hasher
}

func NewIssuer(cfg Config, hasher *password.Hasher) (*Issuer, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("token: secret must be at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("token: access ttl must be positive")
	}
	if hasher == nil {
		return nil, errors.New("token: hasher is required")
	}

	return &Issuer{cfg: cfg, hasher: hasher}, nil
}

// IssueAccess signs a time-bounded assertion of userID.
func (i *Issuer) IssueAccess(userID string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.cfg.Issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.Secret)
}

// ParseAccess validates tokenStr and returns the asserted user id.
func (i *Issuer) ParseAccess(tokenStr string) (string, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if i.cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(i.cfg.Issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(*jwt.Token) (interface{}, error) {
		return i.cfg.Secret, nil
	}, options...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return "", ErrInvalidToken
	}

	return claims.ID, nil
}

// IssueRefresh mints an opaque refresh token and its memory-hard hash. The
// cleartext is never persisted; possession of it, checked against the stored
// hash for a user, is the sole renewal mechanism.
func (i *Issuer) IssueRefresh() (RefreshPair, error) {
	cleartext := uuid.NewString()

	hash, err := i.hasher.Hash(cleartext)
	if err != nil {
		return RefreshPair{}, err
	}

	return RefreshPair{Token: cleartext, Hash: hash}, nil
}

// VerifyRefresh reports whether cleartext matches the stored hash.
func (i *Issuer) VerifyRefresh(storedHash, cleartext string) (bool, error) {
	return i.hasher.Verify(storedHash, cleartext)
}
