package commands

import (
	"context"
	"flag"
	"io"

	"todoboard/internal/config"
	"todoboard/internal/exitcode"
	"todoboard/internal/output"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct{}

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return nil }
func (c *ListsCmd) Synopsis() string  { return "Print all lists" }
func (c *ListsCmd) Usage() string     { return "todoboard lists [common flags]" }
func (c *ListsCmd) NeedsAuth() bool   { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, rt *Runtime, args []string, out, errOut io.Writer) int {
	b, code := RequireBoard(ctx, rt, errOut)
	if b == nil {
		return code
	}
	for i, list := range b.Lists() {
		output.FormatListName(out, output.Letter(i), list)
	}
	return exitcode.Success
}
