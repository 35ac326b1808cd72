package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"todoboard/internal/config"
	"todoboard/internal/service"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token, err := GenerateToken(testSecret, "alice", now, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	got, err := ParseToken(testSecret, token, now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if got != "alice" {
		t.Errorf("subject = %q, want alice", got)
	}
}

func TestParseToken_Rejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token, err := GenerateToken(testSecret, "alice", now, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	tests := []struct {
		name   string
		secret []byte
		token  string
		at     time.Time
	}{
		{"expired", testSecret, token, now.Add(2 * time.Hour)},
		{"wrong secret", []byte("another-secret"), token, now},
		{"garbage", testSecret, "not.a.token", now},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.secret, tt.token, tt.at)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestProvider_SignInNotifiesAndPersists(t *testing.T) {
	store := &MemorySessionStore{}
	p, err := NewProvider(testSecret, store)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	var seen []*service.User
	unsubscribe := p.OnAuthStateChanged(func(u *service.User) { seen = append(seen, u) })
	defer unsubscribe()

	if len(seen) != 1 || seen[0] != nil {
		t.Fatalf("expected immediate signed-out notification, got %v", seen)
	}

	token, err := p.SignIn(context.Background(), "  alice ")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if len(seen) != 2 || seen[1] == nil || seen[1].ID != "alice" {
		t.Fatalf("expected sign-in notification for alice, got %v", seen)
	}
	stored, _ := store.Load()
	if stored != token {
		t.Errorf("stored token mismatch")
	}
	if u, err := p.Verify(token); err != nil || u.ID != "alice" {
		t.Errorf("Verify = %v, %v", u, err)
	}

	// Same user again reissues without notifying.
	if _, err := p.SignIn(context.Background(), "alice"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("re-sign-in should not notify, got %d notifications", len(seen))
	}
}

func TestProvider_SignOut(t *testing.T) {
	store := &MemorySessionStore{}
	p, err := NewProvider(testSecret, store)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	token, err := p.SignIn(context.Background(), "alice")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	var last *service.User
	calls := 0
	p.OnAuthStateChanged(func(u *service.User) { last = u; calls++ })

	if err := p.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if calls != 2 || last != nil {
		t.Errorf("expected signed-out notification, calls=%d last=%v", calls, last)
	}
	if _, ok := p.CurrentUser(); ok {
		t.Error("expected no current user")
	}
	if _, err := p.Verify(token); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("Verify after sign-out = %v, want ErrNotSignedIn", err)
	}

	// A second sign-out is silent.
	if err := p.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if calls != 2 {
		t.Errorf("second sign-out should not notify")
	}
}

func TestProvider_Unsubscribe(t *testing.T) {
	p, err := NewProvider(testSecret, &MemorySessionStore{})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	calls := 0
	unsubscribe := p.OnAuthStateChanged(func(*service.User) { calls++ })
	unsubscribe()
	unsubscribe()

	if _, err := p.SignIn(context.Background(), "alice"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected only the initial notification, got %d", calls)
	}
}

func TestProvider_RestoresSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jwt")
	store := FileSessionStore{Path: path}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := NewProvider(testSecret, store, WithClock(fixedClock(now)))
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if _, err := first.SignIn(context.Background(), "bob"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat session: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("session mode = %o, want 600", perm)
	}

	second, err := NewProvider(testSecret, store, WithClock(fixedClock(now.Add(time.Hour))))
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if u, ok := second.CurrentUser(); !ok || u.ID != "bob" {
		t.Errorf("restored user = %v, %v", u, ok)
	}
}

func TestProvider_DiscardsExpiredSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jwt")
	store := FileSessionStore{Path: path}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := NewProvider(testSecret, store, WithClock(fixedClock(now)), WithTTL(time.Minute))
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if _, err := first.SignIn(context.Background(), "bob"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	second, err := NewProvider(testSecret, store, WithClock(fixedClock(now.Add(time.Hour))))
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if _, ok := second.CurrentUser(); ok {
		t.Error("expired session should not be restored")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expired session file should be removed, stat err = %v", err)
	}
}

func TestLoadOrCreateSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.key")

	first, err := LoadOrCreateSecret(path)
	if err != nil {
		t.Fatalf("LoadOrCreateSecret: %v", err)
	}
	if len(first) != 32 {
		t.Errorf("key length = %d, want 32", len(first))
	}
	second, err := LoadOrCreateSecret(path)
	if err != nil {
		t.Fatalf("LoadOrCreateSecret: %v", err)
	}
	if string(first) != string(second) {
		t.Error("expected the stored key to be reused")
	}
}

func TestNewProvider_RequiresSecret(t *testing.T) {
	if _, err := NewProvider(nil, &MemorySessionStore{}); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestNewFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.New(dir)
	cfg.Session.TTL = "1h"

	p, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if _, err := p.SignIn(context.Background(), "carol"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if _, err := os.Stat(cfg.SessionKeyPath()); err != nil {
		t.Errorf("expected generated key file: %v", err)
	}

	again, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if u, ok := again.CurrentUser(); !ok || u.ID != "carol" {
		t.Errorf("restored user = %v, %v", u, ok)
	}
}
