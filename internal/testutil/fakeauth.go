package testutil

import (
	"context"
	"sync"

	"todoboard/internal/service"
)

// FakeAuth is an in-memory service.Auth whose state is driven by tests.
type FakeAuth struct {
	mu        sync.Mutex
	user      *service.User
	listeners map[int]func(*service.User)
	nextID    int

	SignOutErr error
}

// NewFakeAuth returns a signed-out FakeAuth.
func NewFakeAuth() *FakeAuth {
	return &FakeAuth{listeners: make(map[int]func(*service.User))}
}

// SignIn signs userID in and notifies listeners.
func (a *FakeAuth) SignIn(userID string) {
	a.emit(&service.User{ID: userID})
}

// CurrentUser implements service.Auth.
func (a *FakeAuth) CurrentUser() (service.User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return service.User{}, false
	}
	return *a.user, true
}

// OnAuthStateChanged implements service.Auth.
func (a *FakeAuth) OnAuthStateChanged(fn func(*service.User)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	current := a.user
	a.mu.Unlock()

	fn(current)

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.listeners, id)
	}
}

// SignOut implements service.Auth.
func (a *FakeAuth) SignOut(ctx context.Context) error {
	if a.SignOutErr != nil {
		return a.SignOutErr
	}
	a.emit(nil)
	return nil
}

// Listeners returns the number of registered listeners.
func (a *FakeAuth) Listeners() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.listeners)
}

func (a *FakeAuth) emit(user *service.User) {
	a.mu.Lock()
	a.user = user
	fns := make([]func(*service.User), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(user)
	}
}
