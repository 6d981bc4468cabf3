package authkit_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/yogendrarana/authkit"
	"github.com/yogendrarana/authkit/otp"
	"github.com/yogendrarana/authkit/password"
	"github.com/yogendrarana/authkit/store/redisstore"
	"github.com/yogendrarana/authkit/token"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type sentMail struct {
	From    string
	To      string
	Subject string
	Body    string
}

// captureMailer records outbound mail for assertions.
type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *captureMailer) Send(_ context.Context, from, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{From: from, To: to, Subject: subject, Body: body})
	return nil
}

func (m *captureMailer) last(t *testing.T) sentMail {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("expected at least one mail to be sent")
	}
	return m.sent[len(m.sent)-1]
}

func testConfig() authkit.Config {
	return authkit.Config{
		JWT: authkit.JWTConfig{
			Secret:    testSecret,
			AccessTTL: time.Minute,
			Issuer:    "authkit-test",
		},
		Password: authkit.PasswordConfig{
			Memory:      8192,
			Time:        1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		OTP: authkit.OTPConfig{
			Digits: 6,
			TTL:    15 * time.Minute,
		},
		Mail: authkit.MailConfig{
			Sender: "no-reply@authkit.test",
		},
	}
}

type testEnv struct {
	engine *authkit.Engine
	store  authkit.CredentialStore
	mailer *captureMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, testConfig())
}

func newTestEnvWithConfig(t *testing.T, cfg authkit.Config) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := redisStore(client)
	mailer := &captureMailer{}

	engine, err := authkit.New().
		WithConfig(cfg).
		WithStore(store).
		WithMailer(mailer).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return &testEnv{engine: engine, store: store, mailer: mailer}
}

func (env *testEnv) signup(t *testing.T, email, pass string) *authkit.Result {
	t.Helper()

	result, err := env.engine.Signup(context.Background(), authkit.SignupRequest{
		Name:            "Tester",
		Email:           email,
		Password:        pass,
		ConfirmPassword: pass,
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	return result
}

func (env *testEnv) activeCode(t *testing.T, email string, purpose otp.Purpose) string {
	t.Helper()

	record, err := env.store.FindActiveOtp(context.Background(), email, purpose)
	if err != nil {
		t.Fatalf("FindActiveOtp failed: %v", err)
	}
	return record.Code
}

func (env *testEnv) user(t *testing.T, email string) *authkit.User {
	t.Helper()

	user, err := env.store.FindUserByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("FindUserByEmail failed: %v", err)
	}
	return user
}

// parseAccess validates an access token against the test signing config.
func parseAccess(t *testing.T, accessToken string) string {
	t.Helper()

	issuer := newVerifier(t)
	userID, err := issuer.ParseAccess(accessToken)
	if err != nil {
		t.Fatalf("ParseAccess failed: %v", err)
	}
	return userID
}

func newVerifier(t *testing.T) *token.Issuer {
	t.Helper()

	hasher := newRawHasher(t)
	issuer, err := token.NewIssuer(token.Config{
		Secret:    testSecret,
		AccessTTL: time.Minute,
		Issuer:    "authkit-test",
	}, hasher)
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}
	return issuer
}

func redisStore(client *redis.Client) *redisstore.Store {
	return redisstore.New(client, "aktest", 0)
}

func newRawHasher(t *testing.T) *password.Hasher {
	t.Helper()

	hasher, err := password.NewHasher(password.DefaultConfig())
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return hasher
}

func codeFromMail(t *testing.T, mail sentMail) string {
	t.Helper()

	fields := strings.Fields(mail.Body)
	if len(fields) == 0 {
		t.Fatalf("empty mail body")
	}
	return fields[len(fields)-1]
}
