package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"todoboard/internal/auth"
	"todoboard/internal/cli"
	"todoboard/internal/commands"
	"todoboard/internal/config"
	"todoboard/internal/exitcode"
	"todoboard/internal/service"
	"todoboard/internal/testutil"
)

type fixture struct {
	dir   string
	store *testutil.FakeStore
	auth  *auth.Provider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	provider, err := auth.NewProvider([]byte("0123456789abcdef0123456789abcdef"), &auth.MemorySessionStore{})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	return &fixture{dir: t.TempDir(), store: testutil.NewFakeStore(), auth: provider}
}

// factory returns runtimes over the fixture's store and session.
func (f *fixture) factory(cfg *config.Config, logger *log.Logger) *commands.Runtime {
	rt := commands.NewRuntime(cfg, logger)
	rt.OpenStore = func(ctx context.Context, cfg *config.Config) (service.Store, error) {
		return f.store, nil
	}
	rt.OpenAuth = func(cfg *config.Config) (commands.Authenticator, error) {
		return f.auth, nil
	}
	return rt
}

func (f *fixture) run(args ...string) (stdout, stderr string, code int) {
	d := cli.NewDispatcher(commands.DefaultRegistry, f.factory)
	var out, errOut bytes.Buffer
	// Keep the user's config directory out of tests.
	if len(args) > 0 {
		args = append([]string{args[0], "--config", f.dir}, args[1:]...)
	}
	code = d.Run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	f := newFixture(t)
	_, stderr, code := f.run("unknowncmd")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown command: unknowncmd\n" {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, newFixture(t).factory)

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"--quiet"}, &stdout, &stderr)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr.String() != "error: unknown command: --quiet\n" {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	stdout, stderr, code := newFixture(t).run("help")
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	stdout, stderr, code := newFixture(t).run("version")
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "todoboard 0.1.0\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	_, stderr, code := newFixture(t).run("help", "--unknown")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown flag: -unknown\n" {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestDispatcher_FlagNeedsValue(t *testing.T) {
	_, stderr, code := newFixture(t).run("add", "--list")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: flag needs an argument: -list\n" {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestDispatcher_NeedsAuth(t *testing.T) {
	f := newFixture(t)
	_, stderr, code := f.run("lists")
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: todoboard login)\n" {
		t.Errorf("stderr = %q", stderr)
	}
	if f.store.Calls("ListLists") != 0 {
		t.Error("store should not be read without a session")
	}
}

func TestDispatcher_LoginThenAdd(t *testing.T) {
	f := newFixture(t)
	if _, stderr, code := f.run("login", "alice"); code != exitcode.Success {
		t.Fatalf("login: %d %q", code, stderr)
	}
	if _, stderr, code := f.run("createlist", "Groceries"); code != exitcode.Success {
		t.Fatalf("createlist: %d %q", code, stderr)
	}

	stdout, stderr, code := f.run("add", "--quiet", "-p", "high", "Milk")
	if code != exitcode.Success {
		t.Fatalf("add: %d %q", code, stderr)
	}
	if stdout != "" {
		t.Errorf("--quiet output = %q", stdout)
	}

	stdout, _, code = f.run("lists")
	if code != exitcode.Success || stdout != "a  Groceries (1)\n" {
		t.Errorf("lists = %d %q", code, stdout)
	}
}

func TestDispatcher_InvalidConfig(t *testing.T) {
	f := newFixture(t)
	if err := os.WriteFile(filepath.Join(f.dir, "config.toml"), []byte("backend = [\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, stderr, code := f.run("version")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: ") {
		t.Errorf("stderr = %q", stderr)
	}
}
