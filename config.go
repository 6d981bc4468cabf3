package authkit

import (
	"time"
)

// Config is the explicit process configuration injected at Build time.
// Signing secrets and TTLs live here, never in ambient process state.
type Config struct {
	JWT      JWTConfig
	Password PasswordConfig
	OTP      OTPConfig
	Mail     MailConfig
	Audit    AuditConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig carries access-token signing material and lifetime.
type JWTConfig struct {
	// Secret signs access tokens with HS256. Minimum 32 bytes.
	Secret []byte
	// AccessTTL bounds access-token validity.
	AccessTTL time.Duration
	// Issuer is stamped into the iss claim when non-empty.
	Issuer string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds Argon2id cost parameters. Memory is in KiB.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig controls one-time-code shape and lifetime.
type OTPConfig struct {
	Digits int
	TTL    time.Duration
}

/*
====================================
MAIL CONFIG
====================================
*/

// MailConfig carries the sender address for outbound one-time-code mail.
type MailConfig struct {
	Sender string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events rather than blocking flows when the buffer is
	// full. Dropped counts are visible through [Engine.AuditDropped].
	DropIfFull bool
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL: 15 * time.Minute,
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		OTP: OTPConfig{
			Digits: 6,
			TTL:    15 * time.Minute,
		},
		Mail: MailConfig{
			Sender: "no-reply@localhost",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = append([]byte(nil), cfg.JWT.Secret...)
	return out
}
