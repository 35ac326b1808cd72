package board

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"todoboard/internal/service"
)

// Session holds the signed-in user for the board components.
// It replaces ad hoc current-user lookups: components receive it at
// construction and only the SessionBinder writes to it.
type Session struct {
	mu   sync.RWMutex
	user *service.User
}

// NewSession returns a signed-out session.
func NewSession() *Session {
	return &Session{}
}

// User returns the signed-in user, if any.
func (s *Session) User() (service.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return service.User{}, false
	}
	return *s.user, true
}

// UserID returns the signed-in user's ID, or "" when signed out.
func (s *Session) UserID() string {
	u, _ := s.User()
	return u.ID
}

func (s *Session) set(user *service.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.user = nil
		return
	}
	u := *user
	s.user = &u
}

// SessionBinder keeps the session and cache in step with the auth provider.
// Sign-in refreshes the cache for the new user; sign-out empties it.
type SessionBinder struct {
	auth    service.Auth
	session *Session
	cache   *Cache
	logger  *log.Logger

	mu          sync.Mutex
	unsubscribe func()
	closed      bool
}

// NewSessionBinder creates an unbound binder.
func NewSessionBinder(auth service.Auth, session *Session, cache *Cache, logger *log.Logger) *SessionBinder {
	return &SessionBinder{
		auth:    auth,
		session: session,
		cache:   cache,
		logger:  logger,
	}
}

// Bind subscribes to auth state changes. It may be called once.
// The provider reports the current state immediately, so a signed-in
// user triggers a refresh before Bind returns; a failure of that first
// refresh is returned, and the binder stays bound.
func (b *SessionBinder) Bind(ctx context.Context) error {
	b.mu.Lock()
	if b.unsubscribe != nil || b.closed {
		b.mu.Unlock()
		return ErrAlreadyBound
	}
	// Mark as bound before subscribing; the provider calls back synchronously.
	b.unsubscribe = func() {}
	b.mu.Unlock()

	var (
		firstMu  sync.Mutex
		first    = true
		firstErr error
	)
	unsubscribe := b.auth.OnAuthStateChanged(func(user *service.User) {
		err := b.handle(ctx, user)
		firstMu.Lock()
		if first {
			first = false
			firstErr = err
		}
		firstMu.Unlock()
	})

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		unsubscribe()
		return nil
	}
	b.unsubscribe = unsubscribe

	firstMu.Lock()
	defer firstMu.Unlock()
	return firstErr
}

// Close unsubscribes from the auth provider. Safe to call more than once.
func (b *SessionBinder) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}

func (b *SessionBinder) handle(ctx context.Context, user *service.User) error {
	b.session.set(user)
	if user == nil {
		b.logger.Debug("signed out, clearing cache")
		b.cache.Clear()
		return nil
	}
	b.logger.Debug("signed in, refreshing", "user_id", user.ID)
	// Failures are logged by Refresh and leave the cache as it was.
	return b.cache.Refresh(ctx, user.ID)
}
