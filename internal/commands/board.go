package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todoboard/internal/config"
	"todoboard/internal/exitcode"
)

func init() {
	Register(&BoardCmd{})
}

// BoardCmd implements the board command: the interactive terminal board.
type BoardCmd struct{}

func (c *BoardCmd) Name() string      { return "board" }
func (c *BoardCmd) Aliases() []string { return []string{"ui"} }
func (c *BoardCmd) Synopsis() string  { return "Open the interactive board" }
func (c *BoardCmd) Usage() string     { return "todoboard board [common flags]" }
func (c *BoardCmd) NeedsAuth() bool   { return true }

func (c *BoardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *BoardCmd) Run(ctx context.Context, cfg *config.Config, rt *Runtime, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	b, code := RequireBoard(ctx, rt, errOut)
	if b == nil {
		return code
	}
	if err := rt.RunBoard(ctx, b); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
