package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const phcPrefix = "$argon2id$"

// ErrMalformedHash is returned when an encoded hash cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

// Config holds the Argon2id cost parameters. Memory is in KiB.
type Config struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultConfig returns the cost parameters used when none are configured.
func DefaultConfig() Config {
	return Config{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (c Config) validate() error {
	if c.Memory < 8*1024 {
		return errors.New("password: memory must be >= 8192 KiB")
	}
	if c.Time < 1 {
		return errors.New("password: time must be >= 1")
	}
	if c.Parallelism < 1 {
		return errors.New("password: parallelism must be >= 1")
	}
	if c.SaltLength < 16 {
		return errors.New("password: salt length must be >= 16")
	}
	if c.KeyLength < 16 {
		return errors.New("password: key length must be >= 16")
	}
	return nil
}

// Hasher derives and verifies Argon2id hashes in PHC string format. The same
// hasher family covers user passwords and refresh-token digests.
type Hasher struct {
	cfg Config
}

func NewHasher(cfg Config) (*Hasher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Hasher{cfg: cfg}, nil
}

// Hash derives a one-way salted hash of secret. Input bytes are used exactly
// as provided; length and complexity rules belong to the caller's policy.
func (h *Hasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("password: empty secret")
	}

	salt := make([]byte, h.cfg.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(secret), salt, h.cfg.Time, h.cfg.Memory, h.cfg.Parallelism, h.cfg.KeyLength)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		phcPrefix,
		argon2.Version,
		h.cfg.Memory,
		h.cfg.Time,
		h.cfg.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether candidate matches encodedHash. A mismatch is a false
// return, not an error; errors are reserved for unparseable hashes.
func (h *Hasher) Verify(encodedHash, candidate string) (bool, error) {
	memory, timeCost, parallelism, salt, key, err := decodePHC(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(candidate), salt, timeCost, memory, parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

func decodePHC(encoded string) (memory, timeCost uint32, parallelism uint8, salt, key []byte, err error) {
	if !strings.HasPrefix(encoded, phcPrefix) {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	rest := strings.Split(strings.TrimPrefix(encoded, phcPrefix), "$")
	if len(rest) != 4 {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(rest[0], "v=%d", &version); err != nil || version != argon2.Version {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}
	if _, err := fmt.Sscanf(rest[1], "m=%d,t=%d,p=%d", &memory, &timeCost, &parallelism); err != nil {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}
	if memory == 0 || timeCost == 0 || parallelism == 0 {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	salt, err = base64.RawStdEncoding.DecodeString(rest[2])
	if err != nil || len(salt) == 0 {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}
	key, err = base64.RawStdEncoding.DecodeString(rest[3])
	if err != nil || len(key) == 0 {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	return memory, timeCost, parallelism, salt, key, nil
}
