package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todoboard/internal/config"
	"todoboard/internal/exitcode"
	"todoboard/internal/output"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todoboard` (no args) and `todoboard list <list-name>`.
type ListCmd struct{}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return nil }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "todoboard list [common flags] [<list-name>]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, rt *Runtime, args []string, out, errOut io.Writer) int {
	b, code := RequireBoard(ctx, rt, errOut)
	if b == nil {
		return code
	}
	lists := b.Lists()
	now := rt.Now()

	// No args: every list, lettered in store order
	if len(args) == 0 {
		if len(lists) == 0 {
			if !cfg.Quiet {
				fmt.Fprintln(out, "no lists (run: todoboard createlist <name>)")
			}
			return exitcode.Success
		}
		for i, list := range lists {
			output.FormatListHeader(out, output.Letter(i), list.Name)
			for j, task := range list.Tasks {
				output.FormatTaskIndented(out, j+1, task, now)
			}
		}
		return exitcode.Success
	}

	listName := strings.TrimSpace(strings.Join(args, " "))
	if listName == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}
	list, idx, err := resolveList(lists, listName)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	// Print list section (even if empty)
	output.FormatListHeader(out, output.Letter(idx), list.Name)
	for i, task := range list.Tasks {
		output.FormatTaskIndented(out, i+1, task, now)
	}
	return exitcode.Success
}
