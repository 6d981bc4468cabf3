package authkit_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/yogendrarana/authkit"
)

func newAuditedEnv(t *testing.T) (*authkit.Engine, *authkit.ChannelSink) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	cfg := testConfig()
	cfg.Audit = authkit.AuditConfig{
		Enabled:    true,
		BufferSize: 32,
		DropIfFull: false,
	}

	sink := authkit.NewChannelSink(32)
	engine, err := authkit.New().
		WithConfig(cfg).
		WithStore(redisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, sink
}

func collectAuditEvents(t *testing.T, sink *authkit.ChannelSink, n int) []authkit.AuditEvent {
	t.Helper()

	events := make([]authkit.AuditEvent, 0, n)
	timeout := time.After(2 * time.Second)
	for len(events) < n {
		select {
		case ev := <-sink.Events():
			events = append(events, ev)
		case <-timeout:
			t.Fatalf("collected %d of %d expected audit events", len(events), n)
		}
	}
	return events
}

func TestFlowsEmitAuditEvents(t *testing.T) {
	engine, sink := newAuditedEnv(t)

	if _, err := engine.Signup(context.Background(), authkit.SignupRequest{
		Name:            "Tester",
		Email:           "alice@example.com",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	}); err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if _, err := engine.Signin(context.Background(), authkit.SigninRequest{
		Email:    "alice@example.com",
		Password: "battery-staple",
	}); err == nil {
		t.Fatal("expected signin failure")
	}

	events := collectAuditEvents(t, sink, 2)

	if events[0].EventType != "signup" || !events[0].Success {
		t.Errorf("unexpected first event %+v", events[0])
	}
	if events[1].EventType != "signin" || events[1].Success {
		t.Errorf("unexpected second event %+v", events[1])
	}
	if events[1].Email != "alice@example.com" {
		t.Errorf("failed signin event carries email %q", events[1].Email)
	}
}

func TestAuditEventsCarryNoSecrets(t *testing.T) {
	engine, sink := newAuditedEnv(t)

	password := "correct-horse"
	result, err := engine.Signup(context.Background(), authkit.SignupRequest{
		Name:            "Tester",
		Email:           "alice@example.com",
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	for _, ev := range collectAuditEvents(t, sink, 1) {
		for _, needle := range []string{password, result.RefreshToken, result.AccessToken} {
			if strings.Contains(ev.Error, needle) {
				t.Fatalf("sensitive value leaked in audit error field")
			}
			for k, v := range ev.Metadata {
				if strings.Contains(k, needle) || strings.Contains(v, needle) {
					t.Fatalf("sensitive value leaked in audit metadata")
				}
			}
		}
	}
}
