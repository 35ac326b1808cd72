package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"todoboard/internal/board"
	"todoboard/internal/config"
	"todoboard/internal/exitcode"
)

func init() {
	Register(&MvCmd{})
}

// MvCmd implements the mv command: a drag-and-drop from the command line.
// Moving onto a list appends the task there; moving onto a task of the
// same list reorders, onto a task of another list moves.
type MvCmd struct {
	listName string
}

func (c *MvCmd) Name() string      { return "mv" }
func (c *MvCmd) Aliases() []string { return []string{"move"} }
func (c *MvCmd) Synopsis() string  { return "Move or reorder a task" }
func (c *MvCmd) Usage() string {
	return "todoboard mv [--list <list-name>] <ref> <list-name|ref>"
}
func (c *MvCmd) NeedsAuth() bool { return true }

func (c *MvCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *MvCmd) Run(ctx context.Context, cfg *config.Config, rt *Runtime, args []string, out, errOut io.Writer) int {
	ref, n, err := parseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	dest := strings.TrimSpace(strings.Join(args[n:], " "))
	if dest == "" {
		fmt.Fprintln(errOut, "error: destination required")
		return exitcode.UserError
	}

	b, code := RequireBoard(ctx, rt, errOut)
	if b == nil {
		return code
	}
	lists := b.Lists()
	from, task, err := lookupRef(lists, c.listName, ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	b.StartDrag(task, from.ID)

	// A list name wins over a reference spelled the same way
	var result board.DropResult
	if list, _, nameErr := resolveList(lists, dest); nameErr == nil {
		result, err = b.DropOnList(ctx, list.ID)
	} else if destRef, m, refErr := parseTaskRef(args[n:]); refErr == nil && destRef.HasLetter && m == len(args[n:]) {
		toList, target, lookupErr := lookupRef(lists, "", destRef)
		if lookupErr != nil {
			b.CancelDrag()
			fmt.Fprintf(errOut, "error: %v\n", lookupErr)
			return exitcode.UserError
		}
		result, err = b.DropOnTask(ctx, toList.ID, target.ID)
	} else {
		b.CancelDrag()
		fmt.Fprintf(errOut, "error: %v\n", nameErr)
		return exitcode.UserError
	}

	if err != nil {
		if errors.Is(err, board.ErrPartialMove) {
			fmt.Fprintf(errOut, "error: task copied but not removed from %s: %v\n", from.Name, err)
			return exitcode.BackendError
		}
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		switch result.Outcome {
		case board.OutcomeNone:
			fmt.Fprintln(out, "nothing to do")
		case board.OutcomeReordered:
			if !cfg.DurableOrder {
				fmt.Fprintln(out, "ok (order is not saved; set durable_order = true in config.toml)")
			} else {
				fmt.Fprintln(out, "ok")
			}
		default:
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}
