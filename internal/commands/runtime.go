package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"todoboard/internal/auth"
	"todoboard/internal/backend"
	"todoboard/internal/backend/googletasks"
	"todoboard/internal/board"
	"todoboard/internal/config"
	"todoboard/internal/exitcode"
	"todoboard/internal/server"
	"todoboard/internal/service"
	"todoboard/internal/tui"
)

// Authenticator is the auth provider as commands use it.
type Authenticator interface {
	service.Auth
	SignIn(ctx context.Context, userID string) (string, error)
	Verify(token string) (service.User, error)
}

// Runtime lazily builds what commands run against. Create it with
// NewRuntime; tests replace the function fields.
type Runtime struct {
	Logger *log.Logger
	Now    func() time.Time

	OpenStore  func(ctx context.Context, cfg *config.Config) (service.Store, error)
	OpenAuth   func(cfg *config.Config) (Authenticator, error)
	OAuthLogin func(ctx context.Context, cfg *config.Config, prompt io.Writer) error
	RunBoard   func(ctx context.Context, b *board.Board) error
	Serve      func(ctx context.Context, srv *server.Server, addr string) error

	// NewAccessKey generates the HTTP sign-in key when none is configured.
	NewAccessKey func() string

	cfg *config.Config

	mu    sync.Mutex
	auth  Authenticator
	board *board.Board
}

// NewRuntime returns a runtime wired to the configured backend and the
// config-directory session.
func NewRuntime(cfg *config.Config, logger *log.Logger) *Runtime {
	return &Runtime{
		Logger:    logger,
		Now:       time.Now,
		OpenStore: backend.Open,
		OpenAuth: func(cfg *config.Config) (Authenticator, error) {
			return auth.NewFromConfig(cfg)
		},
		OAuthLogin: googletasks.Login,
		RunBoard: func(ctx context.Context, b *board.Board) error {
			return tui.Run(ctx, b)
		},
		Serve: func(ctx context.Context, srv *server.Server, addr string) error {
			return srv.ListenAndServe(ctx, addr)
		},
		NewAccessKey: uuid.NewString,
		cfg:          cfg,
	}
}

// Auth returns the auth provider, creating it on first use.
func (rt *Runtime) Auth() (Authenticator, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.auth != nil {
		return rt.auth, nil
	}
	a, err := rt.OpenAuth(rt.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrUnauthorized, err)
	}
	rt.auth = a
	return a, nil
}

// Board returns the started board, creating it on first use. The board
// is loaded for the signed-in user, if any.
func (rt *Runtime) Board(ctx context.Context) (*board.Board, error) {
	a, err := rt.Auth()
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.board != nil {
		return rt.board, nil
	}
	store, err := rt.OpenStore(ctx, rt.cfg)
	if err != nil {
		return nil, err
	}
	b := board.New(store, a, rt.Logger, board.WithDurableOrder(rt.cfg.DurableOrder))
	if err := b.Start(ctx); err != nil {
		_ = b.Close()
		return nil, err
	}
	rt.board = b
	return b, nil
}

// Close releases the board and its store.
func (rt *Runtime) Close() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.board == nil {
		return nil
	}
	err := rt.board.Close()
	rt.board = nil
	return err
}

// RequireBoard returns the board for a signed-in user, or prints the
// error and returns the exit code to use.
func RequireBoard(ctx context.Context, rt *Runtime, errOut io.Writer) (*board.Board, int) {
	b, err := rt.Board(ctx)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			fmt.Fprintf(errOut, "error: auth error: %v\n", err)
			return nil, exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return nil, exitcode.BackendError
	}
	if _, ok := b.User(); !ok {
		fmt.Fprintln(errOut, "error: not logged in (run: todoboard login)")
		return nil, exitcode.AuthError
	}
	return b, exitcode.Success
}
