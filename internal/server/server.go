// Package server exposes the board as a JSON HTTP API with bearer-token
// sessions and CORS.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/rs/cors"

	"todoboard/internal/board"
	"todoboard/internal/service"
)

// Authenticator signs users in and checks bearer tokens.
type Authenticator interface {
	SignIn(ctx context.Context, userID string) (string, error)
	Verify(token string) (service.User, error)
}

// Options configures a Server.
type Options struct {
	// AllowedOrigins lists the browser origins allowed cross-origin access.
	// Empty means none.
	AllowedOrigins []string

	// AccessKey must accompany every sign-in. Empty disables sign-in.
	AccessKey string
}

// Server serves one board.
type Server struct {
	board  *board.Board
	auth   Authenticator
	logger *log.Logger
	opts   Options
}

// New creates a server.
func New(b *board.Board, auth Authenticator, logger *log.Logger, opts Options) *Server {
	return &Server{board: b, auth: auth, logger: logger, opts: opts}
}

// Handler returns the routed API wrapped with CORS and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /session", s.handleSignIn)

	mux.HandleFunc("GET /session", s.requireUser(s.handleSession))
	mux.HandleFunc("DELETE /session", s.requireUser(s.handleSignOut))
	mux.HandleFunc("GET /lists", s.requireUser(s.handleLists))
	mux.HandleFunc("POST /lists", s.requireUser(s.handleCreateList))
	mux.HandleFunc("POST /refresh", s.requireUser(s.handleRefresh))
	mux.HandleFunc("GET /lists/{listID}/draft", s.requireUser(s.handleGetDraft))
	mux.HandleFunc("PATCH /lists/{listID}/draft", s.requireUser(s.handleUpdateDraft))
	mux.HandleFunc("POST /lists/{listID}/draft/submit", s.requireUser(s.handleSubmitDraft))
	mux.HandleFunc("POST /lists/{listID}/tasks", s.requireUser(s.handleCreateTask))
	mux.HandleFunc("PATCH /lists/{listID}/tasks/{taskID}", s.requireUser(s.handleUpdateTask))
	mux.HandleFunc("DELETE /lists/{listID}/tasks/{taskID}", s.requireUser(s.handleDeleteTask))
	mux.HandleFunc("GET /drag", s.requireUser(s.handleGetDrag))
	mux.HandleFunc("POST /drag", s.requireUser(s.handleStartDrag))
	mux.HandleFunc("DELETE /drag", s.requireUser(s.handleCancelDrag))
	mux.HandleFunc("POST /drop", s.requireUser(s.handleDrop))

	corsOpts := cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}
	// rs/cors treats an empty origin list as "*"
	if len(corsOpts.AllowedOrigins) == 0 {
		corsOpts.AllowOriginFunc = func(string) bool { return false }
	}
	return s.logRequests(cors.New(corsOpts).Handler(mux))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}
