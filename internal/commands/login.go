package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"todoboard/internal/backend/googletasks"
	"todoboard/internal/config"
	"todoboard/internal/exitcode"
)

// GoogleUserID is the session user for the googletasks backend; the
// account itself is implied by the OAuth token.
const GoogleUserID = "me"

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct{}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in" }
func (c *LoginCmd) Usage() string     { return "todoboard login [common flags] [<user>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, rt *Runtime, args []string, out, errOut io.Writer) int {
	userID := strings.TrimSpace(strings.Join(args, " "))

	if cfg.Backend == config.BackendGoogleTasks {
		if userID != "" && userID != GoogleUserID {
			fmt.Fprintln(errOut, "error: the googletasks backend signs in with your Google account; omit <user>")
			return exitcode.UserError
		}
		if err := rt.OAuthLogin(ctx, cfg, errOut); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			if errors.Is(err, googletasks.ErrNoOAuthClient) {
				fmt.Fprintln(errOut, "")
				googletasks.PrintSetupHelp(errOut, cfg.Dir)
			}
			return exitcode.AuthError
		}
		userID = GoogleUserID
	}

	if userID == "" {
		fmt.Fprintln(errOut, "error: user required")
		return exitcode.UserError
	}

	a, err := rt.Auth()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	if u, ok := a.CurrentUser(); ok && u.ID == userID {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}
	if _, err := a.SignIn(ctx, userID); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
