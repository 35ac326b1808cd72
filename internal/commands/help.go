package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todoboard/internal/config"
	"todoboard/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "todoboard help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, rt *Runtime, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, cmd := range DefaultRegistry.All() {
		name := cmd.Name()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			name += " (" + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(out, "  %-16s %s\n", name, cmd.Synopsis())
	}
	return exitcode.Success
}

const helpText = `Usage:
  todoboard                                          List all lists and tasks
  todoboard list [common flags] [<list-name>]        List tasks in a specific list
  todoboard lists [common flags]
  todoboard createlist [common flags] <list-name>
  todoboard addlist [common flags] <list-name>
  todoboard add [common flags] [--list <list-name>] [--desc <text>]
                [--due <YYYY-MM-DD>] [--priority low|medium|high] <title...>
  todoboard create ...                               Same as add
  todoboard show [common flags] [--list <list-name>] <ref>
  todoboard edit [common flags] [--list <list-name>] [--title <t>] [--desc <text>]
                 [--due <YYYY-MM-DD>] [--priority <p>] <ref>
  todoboard rm [common flags] [--list <list-name>] <ref>
  todoboard mv [common flags] [--list <list-name>] <ref> <list-name|ref>
  todoboard board [common flags]                     Interactive board
  todoboard serve [common flags] [--addr <host:port>] HTTP API
  todoboard login [common flags] [<user>]
  todoboard logout [common flags]
  todoboard help
  todoboard version

Task references:
  a1, a 1          Task 1 of list a (lists are lettered in creation order)
  3                Task 3 of the --list list, or of list a

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
