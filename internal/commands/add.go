package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"todoboard/internal/board"
	"todoboard/internal/config"
	"todoboard/internal/exitcode"
	"todoboard/internal/service"
)

func init() {
	Register(&AddCmd{})
	Register(&CreateCmd{})
}

// taskFlags are the task field flags shared by add and create.
type taskFlags struct {
	listName    string
	description string
	due         string
	priority    string
}

func (f *taskFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.listName, "list", "", "")
	fs.StringVar(&f.listName, "l", "", "")
	fs.StringVar(&f.description, "desc", "", "")
	fs.StringVar(&f.description, "d", "", "")
	fs.StringVar(&f.due, "due", "", "")
	fs.StringVar(&f.priority, "priority", "", "")
	fs.StringVar(&f.priority, "p", "", "")
}

// AddCmd implements the add command.
type AddCmd struct {
	flags taskFlags
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return nil }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "todoboard add [--list <list-name>] [--desc <text>] [--due <YYYY-MM-DD>] [--priority <p>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) { c.flags.register(fs) }

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, rt *Runtime, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, rt, c.flags, args, out, errOut)
}

// CreateCmd is an alias for AddCmd.
type CreateCmd struct {
	flags taskFlags
}

func (c *CreateCmd) Name() string      { return "create" }
func (c *CreateCmd) Aliases() []string { return nil }
func (c *CreateCmd) Synopsis() string  { return "Create a task (alias for add)" }
func (c *CreateCmd) Usage() string {
	return "todoboard create [--list <list-name>] [--desc <text>] [--due <YYYY-MM-DD>] [--priority <p>] <title...>"
}
func (c *CreateCmd) NeedsAuth() bool { return true }

func (c *CreateCmd) RegisterFlags(fs *flag.FlagSet) { c.flags.register(fs) }

func (c *CreateCmd) Run(ctx context.Context, cfg *config.Config, rt *Runtime, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, rt, c.flags, args, out, errOut)
}

// runAdd is the shared implementation for add and create commands.
func runAdd(ctx context.Context, cfg *config.Config, rt *Runtime, f taskFlags, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	priority, err := service.ParsePriority(f.priority)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	due, err := parseDue(f.due)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	b, code := RequireBoard(ctx, rt, errOut)
	if b == nil {
		return code
	}

	// Without --list the task goes to list a
	lists := b.Lists()
	var list service.TaskList
	if f.listName != "" {
		list, _, err = resolveList(lists, f.listName)
	} else {
		list, err = listByLetter(lists, 'a')
		if err != nil {
			err = fmt.Errorf("no lists (run: todoboard createlist <name>)")
		}
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	draft := board.TaskDraft{
		Title:       title,
		Description: f.description,
		DueDate:     due,
		Priority:    priority,
	}
	if err := b.AddTask(ctx, list.ID, draft); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// parseDue validates a YYYY-MM-DD date. Empty means no due date.
func parseDue(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", fmt.Errorf("invalid due date: %s (want YYYY-MM-DD)", s)
	}
	return s, nil
}
