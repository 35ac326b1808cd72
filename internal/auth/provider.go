// Package auth implements the sign-in provider: signed session tokens, a
// persisted current session, and sign-in state subscriptions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"todoboard/internal/service"
)

// DefaultTTL is the lifetime of a session token.
const DefaultTTL = 30 * 24 * time.Hour

// ErrNotSignedIn is returned when an operation needs a session and there is none.
var ErrNotSignedIn = errors.New("not logged in")

// Provider implements service.Auth with HS256 session tokens.
type Provider struct {
	secret []byte
	store  SessionStore
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	user      *service.User
	token     string
	listeners map[int]func(*service.User)
	nextID    int
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithTTL sets the session token lifetime.
func WithTTL(ttl time.Duration) ProviderOption {
	return func(p *Provider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithClock sets the time source used for issuing and checking tokens.
func WithClock(now func() time.Time) ProviderOption {
	return func(p *Provider) {
		p.now = now
	}
}

// NewProvider creates a provider and restores the session from store.
// A stored token that no longer verifies is discarded.
func NewProvider(secret []byte, store SessionStore, opts ...ProviderOption) (*Provider, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	p := &Provider{
		secret:    secret,
		store:     store,
		ttl:       DefaultTTL,
		now:       time.Now,
		listeners: make(map[int]func(*service.User)),
	}
	for _, opt := range opts {
		opt(p)
	}

	token, err := store.Load()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return p, nil
	}
	userID, err := ParseToken(p.secret, token, p.now())
	if err != nil {
		if err := store.Remove(); err != nil {
			return nil, fmt.Errorf("remove stale session: %w", err)
		}
		return p, nil
	}
	p.user = &service.User{ID: userID}
	p.token = token
	return p, nil
}

// CurrentUser implements service.Auth.
func (p *Provider) CurrentUser() (service.User, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.user == nil {
		return service.User{}, false
	}
	return *p.user, true
}

// Token returns the current session token, or "" when signed out.
func (p *Provider) Token() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.token
}

// OnAuthStateChanged implements service.Auth.
func (p *Provider) OnAuthStateChanged(fn func(*service.User)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	current := copyUser(p.user)
	p.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			delete(p.listeners, id)
		})
	}
}

// SignIn starts a session for userID, persists its token and notifies
// listeners. Signing in as the current user reissues the token without
// notifying.
func (p *Provider) SignIn(ctx context.Context, userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("user id is required")
	}
	token, err := GenerateToken(p.secret, userID, p.now(), p.ttl)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	if err := p.store.Save(token); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	p.mu.Lock()
	changed := p.user == nil || p.user.ID != userID
	p.user = &service.User{ID: userID}
	p.token = token
	p.mu.Unlock()

	if changed {
		p.notify(&service.User{ID: userID})
	}
	return token, nil
}

// SignOut implements service.Auth. Signing out without a session is a no-op.
func (p *Provider) SignOut(ctx context.Context) error {
	if err := p.store.Remove(); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}

	p.mu.Lock()
	was := p.user != nil
	p.user = nil
	p.token = ""
	p.mu.Unlock()

	if was {
		p.notify(nil)
	}
	return nil
}

// Verify checks a bearer token against the current session.
func (p *Provider) Verify(token string) (service.User, error) {
	userID, err := ParseToken(p.secret, token, p.now())
	if err != nil {
		return service.User{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.user == nil || p.user.ID != userID {
		return service.User{}, ErrNotSignedIn
	}
	return *p.user, nil
}

func (p *Provider) notify(user *service.User) {
	p.mu.Lock()
	fns := make([]func(*service.User), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(copyUser(user))
	}
}

func copyUser(u *service.User) *service.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
