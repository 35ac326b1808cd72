package commands_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todoboard/internal/backend/googletasks"
	"todoboard/internal/board"
	"todoboard/internal/commands"
	"todoboard/internal/config"
	"todoboard/internal/exitcode"
	"todoboard/internal/server"
)

func TestLoginCommand(t *testing.T) {
	env := newEnv(t, "")

	stdout, stderr, code := env.run(t, &commands.LoginCmd{}, "bob")
	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "ok\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if u, ok := env.auth.CurrentUser(); !ok || u.ID != "bob" {
		t.Fatalf("current user = %+v, %v", u, ok)
	}

	stdout, _, code = env.run(t, &commands.LoginCmd{}, "bob")
	expectCode(t, code, exitcode.Success, "")
	if stdout != "already logged in\n" {
		t.Errorf("stdout = %q", stdout)
	}

	// Signing in as someone else replaces the session.
	_, stderr, code = env.run(t, &commands.LoginCmd{}, "carol")
	expectCode(t, code, exitcode.Success, stderr)
	if u, _ := env.auth.CurrentUser(); u.ID != "carol" {
		t.Errorf("current user = %q", u.ID)
	}
}

func TestLoginCommand_UserRequired(t *testing.T) {
	env := newEnv(t, "")
	_, stderr, code := env.run(t, &commands.LoginCmd{}, " ")
	expectCode(t, code, exitcode.UserError, stderr)
	if stderr != "error: user required\n" {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestLoginCommand_GoogleTasks(t *testing.T) {
	env := newEnv(t, "")
	env.cfg.Backend = config.BackendGoogleTasks
	var prompted bool
	env.rt.OAuthLogin = func(ctx context.Context, cfg *config.Config, prompt io.Writer) error {
		prompted = true
		return nil
	}

	_, stderr, code := env.run(t, &commands.LoginCmd{})
	expectCode(t, code, exitcode.Success, stderr)
	if !prompted {
		t.Error("OAuth flow was not run")
	}
	if u, ok := env.auth.CurrentUser(); !ok || u.ID != commands.GoogleUserID {
		t.Errorf("current user = %+v, %v", u, ok)
	}
}

func TestLoginCommand_GoogleTasksRejectsUser(t *testing.T) {
	env := newEnv(t, "")
	env.cfg.Backend = config.BackendGoogleTasks

	_, stderr, code := env.run(t, &commands.LoginCmd{}, "bob")
	expectCode(t, code, exitcode.UserError, stderr)
	if _, ok := env.auth.CurrentUser(); ok {
		t.Error("no session expected")
	}
}

func TestLoginCommand_NoOAuthClient(t *testing.T) {
	env := newEnv(t, "")
	env.cfg.Backend = config.BackendGoogleTasks
	env.rt.OAuthLogin = func(ctx context.Context, cfg *config.Config, prompt io.Writer) error {
		return fmt.Errorf("%w in %s", googletasks.ErrNoOAuthClient, cfg.Dir)
	}

	stdout, stderr, code := env.run(t, &commands.LoginCmd{})
	expectCode(t, code, exitcode.AuthError, stderr)
	if stdout != "" {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.HasPrefix(stderr, "error: oauth_client.json not found") {
		t.Errorf("stderr = %q", stderr)
	}
	if strings.Count(stderr, "\n") < 3 {
		t.Errorf("expected setup help after the error, got %q", stderr)
	}
}

func TestLoginCommand_OAuthFailure(t *testing.T) {
	env := newEnv(t, "")
	env.cfg.Backend = config.BackendGoogleTasks
	env.rt.OAuthLogin = func(ctx context.Context, cfg *config.Config, prompt io.Writer) error {
		return errors.New("access denied")
	}

	_, stderr, code := env.run(t, &commands.LoginCmd{})
	expectCode(t, code, exitcode.AuthError, stderr)
	if stderr != "error: access denied\n" {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestLogoutCommand(t *testing.T) {
	env := newEnv(t, "alice")
	token := filepath.Join(env.cfg.Dir, "token.json")
	if err := os.WriteFile(token, []byte(`{"access_token":"x"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := env.run(t, &commands.LogoutCmd{})
	expectCode(t, code, exitcode.Success, stderr)
	if stdout != "ok\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if _, ok := env.auth.CurrentUser(); ok {
		t.Error("still signed in")
	}
	if _, err := os.Stat(token); !os.IsNotExist(err) {
		t.Errorf("token.json not removed: %v", err)
	}

	stdout, _, code = env.run(t, &commands.LogoutCmd{})
	expectCode(t, code, exitcode.Success, "")
	if stdout != "not logged in\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestLogoutCommand_ClearsBoard(t *testing.T) {
	env := newEnv(t, "alice")
	env.seed()
	b, err := env.rt.Board(context.Background())
	if err != nil {
		t.Fatalf("Board: %v", err)
	}
	if len(b.Lists()) != 2 {
		t.Fatalf("lists = %d", len(b.Lists()))
	}

	_, stderr, code := env.run(t, &commands.LogoutCmd{})
	expectCode(t, code, exitcode.Success, stderr)
	if _, ok := b.User(); ok {
		t.Error("board still has a user")
	}
	if len(b.Lists()) != 0 {
		t.Errorf("cache not cleared: %d lists", len(b.Lists()))
	}
}

func TestBoardCommand(t *testing.T) {
	env := newEnv(t, "alice")
	env.seed()
	var got *board.Board
	env.rt.RunBoard = func(ctx context.Context, b *board.Board) error {
		got = b
		return nil
	}

	_, stderr, code := env.run(t, &commands.BoardCmd{})
	expectCode(t, code, exitcode.Success, stderr)
	if got == nil || len(got.Lists()) != 2 {
		t.Fatalf("board not run with the loaded lists")
	}

	env.rt.RunBoard = func(ctx context.Context, b *board.Board) error {
		return errors.New("board requires a terminal")
	}
	_, stderr, code = env.run(t, &commands.BoardCmd{})
	expectCode(t, code, exitcode.UserError, stderr)
	if stderr != "error: board requires a terminal\n" {
		t.Errorf("stderr = %q", stderr)
	}

	_, stderr, code = env.run(t, &commands.BoardCmd{}, "extra")
	expectCode(t, code, exitcode.UserError, stderr)
}

func TestBoardCommand_NotLoggedIn(t *testing.T) {
	env := newEnv(t, "")
	env.rt.RunBoard = func(ctx context.Context, b *board.Board) error {
		t.Error("board should not run without a session")
		return nil
	}
	_, stderr, code := env.run(t, &commands.BoardCmd{})
	expectCode(t, code, exitcode.AuthError, stderr)
}

func TestServeCommand(t *testing.T) {
	env := newEnv(t, "")
	env.rt.NewAccessKey = func() string { return "generated-key" }
	var addr string
	env.rt.Serve = func(ctx context.Context, srv *server.Server, a string) error {
		addr = a
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()
		resp, err := http.Get(ts.URL + "/health")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("health status %d", resp.StatusCode)
		}
		return nil
	}

	stdout, stderr, code := env.run(t, &commands.ServeCmd{}, "--addr", "127.0.0.1:9999")
	expectCode(t, code, exitcode.Success, stderr)
	if addr != "127.0.0.1:9999" {
		t.Errorf("addr = %q", addr)
	}
	if stdout != "listening on http://127.0.0.1:9999\naccess key: generated-key\n" {
		t.Errorf("stdout = %q", stdout)
	}

	// Without --addr the configured address is used.
	_, stderr, code = env.run(t, &commands.ServeCmd{})
	expectCode(t, code, exitcode.Success, stderr)
	if addr != config.DefaultAddr {
		t.Errorf("addr = %q, want %q", addr, config.DefaultAddr)
	}
}

func TestServeCommand_AccessKey(t *testing.T) {
	env := newEnv(t, "")
	env.cfg.Server.AccessKey = "configured-key"
	env.rt.NewAccessKey = func() string {
		t.Error("a configured key must not be replaced")
		return ""
	}
	env.rt.Serve = func(ctx context.Context, srv *server.Server, addr string) error {
		ts := httptest.NewServer(srv.Handler())
		defer ts.Close()
		for key, want := range map[string]int{"wrong": http.StatusUnauthorized, "configured-key": http.StatusOK} {
			body := strings.NewReader(`{"user_id":"alice","key":"` + key + `"}`)
			resp, err := http.Post(ts.URL+"/session", "application/json", body)
			if err != nil {
				return err
			}
			resp.Body.Close()
			if resp.StatusCode != want {
				return fmt.Errorf("key %q: status %d, want %d", key, resp.StatusCode, want)
			}
		}
		return nil
	}

	stdout, stderr, code := env.run(t, &commands.ServeCmd{})
	expectCode(t, code, exitcode.Success, stderr)
	if strings.Contains(stdout, "access key") {
		t.Errorf("configured key should not be printed: %q", stdout)
	}
	if u, ok := env.auth.CurrentUser(); !ok || u.ID != "alice" {
		t.Errorf("current user = %+v, %v", u, ok)
	}
}

func TestServeCommand_Fails(t *testing.T) {
	env := newEnv(t, "")
	env.rt.NewAccessKey = func() string { return "k" }
	env.rt.Serve = func(ctx context.Context, srv *server.Server, addr string) error {
		return errors.New("address already in use")
	}
	env.cfg.Quiet = true

	stdout, stderr, code := env.run(t, &commands.ServeCmd{})
	expectCode(t, code, exitcode.BackendError, stderr)
	// A generated key is printed even when quiet.
	if stdout != "access key: k\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if stderr != "error: address already in use\n" {
		t.Errorf("stderr = %q", stderr)
	}
}
