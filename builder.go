package authkit

import (
	"errors"

	"github.com/yogendrarana/authkit/otp"
	"github.com/yogendrarana/authkit/password"
	"github.com/yogendrarana/authkit/token"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the engine's flow methods are called.
type Builder struct {
	config Config

	store     CredentialStore
	mailer    Mailer
	policy    PasswordPolicy
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration. Zero sections fall back to
// their defaults at Build time only where documented.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the credential store. Required.
func (b *Builder) WithStore(store CredentialStore) *Builder {
	b.store = store
	return b
}

// WithMailer sets the outbound mail collaborator. Optional; when absent,
// one-time codes are persisted but not dispatched.
func (b *Builder) WithMailer(mailer Mailer) *Builder {
	b.mailer = mailer
	return b
}

// WithPasswordPolicy sets the password validation collaborator. Optional;
// defaults to [DefaultPasswordPolicy].
func (b *Builder) WithPasswordPolicy(policy PasswordPolicy) *Builder {
	b.policy = policy
	return b
}

// WithAuditSink sets the audit destination. Effective only when
// [AuditConfig.Enabled] is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates configuration, constructs the leaf components, and returns
// a ready Engine. A builder is single-use.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.store == nil {
		return nil, errors.New("credential store required")
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	codes, err := otp.NewEngine(b.store, otp.Config{
		Digits: cfg.OTP.Digits,
		TTL:    cfg.OTP.TTL,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := token.NewIssuer(token.Config{
		Secret:    cfg.JWT.Secret,
		AccessTTL: cfg.JWT.AccessTTL,
		Issuer:    cfg.JWT.Issuer,
	}, hasher)
	if err != nil {
		return nil, err
	}

	mailer := b.mailer
	if mailer == nil {
		mailer = noopMailer{}
	}

	policy := b.policy
	if policy == nil {
		policy = DefaultPasswordPolicy{}
	}

	engine := &Engine{
		config: cfg,
		store:  b.store,
		mailer: mailer,
		policy: policy,
		hasher: hasher,
		codes:  codes,
		tokens: tokens,
		audit:  newAuditDispatcher(cfg.Audit, b.auditSink),
	}

	b.built = true
	return engine, nil
}
