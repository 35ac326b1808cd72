package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todoboard/internal/config"
	"todoboard/internal/exitcode"
	"todoboard/internal/server"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command: the JSON HTTP API.
// Clients sign in through POST /session with the access key, so no session
// is needed to start.
type ServeCmd struct {
	addr string
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return nil }
func (c *ServeCmd) Synopsis() string  { return "Serve the HTTP API" }
func (c *ServeCmd) Usage() string     { return "todoboard serve [common flags] [--addr <host:port>]" }
func (c *ServeCmd) NeedsAuth() bool   { return false }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, rt *Runtime, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	addr := c.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	a, err := rt.Auth()
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}
	b, err := rt.Board(ctx)
	if err != nil {
		return reportError(errOut, err)
	}

	key := cfg.Server.AccessKey
	generated := key == ""
	if generated {
		key = rt.NewAccessKey()
	}
	srv := server.New(b, a, rt.Logger, server.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AccessKey:      key,
	})
	if !cfg.Quiet {
		fmt.Fprintf(out, "listening on http://%s\n", addr)
	}
	// A generated key is printed even with --quiet; clients cannot sign in without it
	if generated {
		fmt.Fprintf(out, "access key: %s\n", key)
	}
	if err := rt.Serve(ctx, srv, addr); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
