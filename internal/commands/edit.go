package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todoboard/internal/config"
	"todoboard/internal/exitcode"
	"todoboard/internal/output"
	"todoboard/internal/service"
)

func init() {
	Register(&EditCmd{})
	Register(&ShowCmd{})
}

// optString is a string flag that records whether it was given.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	listName    string
	title       optString
	description optString
	due         optString
	priority    optString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "todoboard edit [--list <list-name>] [--title <t>] [--desc <text>] [--due <YYYY-MM-DD>] [--priority <p>] <ref>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.description, c.due, c.priority = optString{}, optString{}, optString{}, optString{}
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "desc", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.due, "due", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, rt *Runtime, args []string, out, errOut io.Writer) int {
	if _, err := ParseTaskRef(args); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	patch, err := c.patch()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if patch.IsEmpty() {
		fmt.Fprintln(errOut, "error: nothing to change (use --title, --desc, --due or --priority)")
		return exitcode.UserError
	}

	b, code := RequireBoard(ctx, rt, errOut)
	if b == nil {
		return code
	}
	list, task, code := resolveTaskArgs(b, c.listName, args, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := b.UpdateTask(ctx, list.ID, task.ID, patch); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func (c *EditCmd) patch() (service.TaskPatch, error) {
	var p service.TaskPatch
	if c.title.set {
		if c.title.value == "" {
			return p, fmt.Errorf("title required")
		}
		p.Title = &c.title.value
	}
	if c.description.set {
		p.Description = &c.description.value
	}
	if c.due.set {
		due, err := parseDue(c.due.value)
		if err != nil {
			return p, err
		}
		p.DueDate = &due
	}
	if c.priority.set {
		pr, err := service.ParsePriority(c.priority.value)
		if err != nil {
			return p, err
		}
		p.Priority = &pr
	}
	return p, nil
}

// ShowCmd implements the show command.
type ShowCmd struct {
	listName string
}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Print a task" }
func (c *ShowCmd) Usage() string     { return "todoboard show [--list <list-name>] <ref>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, rt *Runtime, args []string, out, errOut io.Writer) int {
	b, code := RequireBoard(ctx, rt, errOut)
	if b == nil {
		return code
	}
	_, task, code := resolveTaskArgs(b, c.listName, args, errOut)
	if code != exitcode.Success {
		return code
	}
	output.FormatTaskDetail(out, task, rt.Now())
	return exitcode.Success
}
