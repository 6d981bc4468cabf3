package otp

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeStore keeps one active record per (email, purpose) in memory.
type fakeStore struct {
	records map[string]*Record
	deletes int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*Record{}}
}

func (f *fakeStore) key(email string, purpose Purpose) string {
	return email + "/" + purpose.String()
}

func (f *fakeStore) put(record *Record) {
	f.records[f.key(record.Email, record.Purpose)] = record
}

func (f *fakeStore) FindActiveOtp(_ context.Context, email string, purpose Purpose) (*Record, error) {
	record, ok := f.records[f.key(email, purpose)]
	if !ok {
		return nil, ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) DeleteOtps(_ context.Context, email string, purpose Purpose) error {
	delete(f.records, f.key(email, purpose))
	f.deletes++
	return nil
}

func newTestEngine(t *testing.T, store Store, cfg Config) *Engine {
	t.Helper()

	engine, err := NewEngine(store, cfg)
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}
	return engine
}

func TestGenerateShape(t *testing.T) {
	engine := newTestEngine(t, newFakeStore(), Config{Digits: 6, TTL: time.Minute})

	for i := 0; i < 50; i++ {
		code, err := engine.Generate()
		if err != nil {
			t.Fatalf("Generate error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("expected numeric code, got %q", code)
			}
		}
	}
}

func TestCheckSuccessDoesNotConsume(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store, Config{Digits: 6, TTL: time.Minute})

	store.put(&Record{Email: "a@x.com", Code: "123456", Purpose: PurposeEmailVerification, CreatedAt: time.Now()})

	for i := 0; i < 2; i++ {
		record, err := engine.Check(context.Background(), "a@x.com", PurposeEmailVerification, "123456")
		if err != nil {
			t.Fatalf("Check error on attempt %d: %v", i+1, err)
		}
		if record.Code != "123456" {
			t.Fatalf("unexpected record: %+v", record)
		}
	}
}

func TestVerifyConsumes(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store, Config{Digits: 6, TTL: time.Minute})

	store.put(&Record{Email: "a@x.com", Code: "123456", Purpose: PurposeEmailVerification, CreatedAt: time.Now()})

	if _, err := engine.Verify(context.Background(), "a@x.com", PurposeEmailVerification, "123456"); err != nil {
		t.Fatalf("Verify error: %v", err)
	}

	if _, err := engine.Verify(context.Background(), "a@x.com", PurposeEmailVerification, "123456"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on replay, got %v", err)
	}
}

func TestCheckMismatch(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store, Config{Digits: 6, TTL: time.Minute})

	store.put(&Record{Email: "a@x.com", Code: "123456", Purpose: PurposeEmailVerification, CreatedAt: time.Now()})

	if _, err := engine.Check(context.Background(), "a@x.com", PurposeEmailVerification, "654321"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
}

func TestCheckPurposeBinding(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store, Config{Digits: 6, TTL: time.Minute})

	store.put(&Record{Email: "a@x.com", Code: "123456", Purpose: PurposeEmailVerification, CreatedAt: time.Now()})

	if _, err := engine.Check(context.Background(), "a@x.com", PurposePasswordReset, "123456"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong purpose, got %v", err)
	}
}

func TestCheckExpiredDeletesRecord(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store, Config{Digits: 6, TTL: 10 * time.Minute})
	engine.now = func() time.Time { return time.Now().Add(time.Hour) }

	store.put(&Record{Email: "a@x.com", Code: "123456", Purpose: PurposeEmailVerification, CreatedAt: time.Now()})

	if _, err := engine.Check(context.Background(), "a@x.com", PurposeEmailVerification, "123456"); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if len(store.records) != 0 {
		t.Fatal("expected expired record to be deleted")
	}
}

func TestZeroTTLDisablesExpiry(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store, Config{Digits: 6})
	engine.now = func() time.Time { return time.Now().Add(24 * time.Hour) }

	store.put(&Record{Email: "a@x.com", Code: "123456", Purpose: PurposeEmailVerification, CreatedAt: time.Now()})

	if _, err := engine.Check(context.Background(), "a@x.com", PurposeEmailVerification, "123456"); err != nil {
		t.Fatalf("expected check to pass with expiry disabled, got %v", err)
	}
}

func TestNewEngineValidation(t *testing.T) {
	if _, err := NewEngine(nil, Config{Digits: 6}); err == nil {
		t.Fatal("expected nil store to be rejected")
	}
	if _, err := NewEngine(newFakeStore(), Config{Digits: 2}); err == nil {
		t.Fatal("expected too-short digits to be rejected")
	}
	if _, err := NewEngine(newFakeStore(), Config{Digits: 11}); err == nil {
		t.Fatal("expected too-long digits to be rejected")
	}
	if _, err := NewEngine(newFakeStore(), Config{Digits: 6, TTL: -time.Minute}); err == nil {
		t.Fatal("expected negative ttl to be rejected")
	}
}
