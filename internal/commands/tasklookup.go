package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"todoboard/internal/board"
	"todoboard/internal/exitcode"
	"todoboard/internal/output"
	"todoboard/internal/service"
)

var (
	errListNotFound   = errors.New("list not found")
	errAmbiguousList  = errors.New("ambiguous list name")
	errLetterNotFound = errors.New("list letter not found")
	errOutOfRange     = errors.New("task number out of range")
)

// resolveList finds a cached list by name (case-insensitive, trimmed).
func resolveList(lists []service.TaskList, name string) (service.TaskList, int, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	found := -1
	for i, l := range lists {
		if strings.ToLower(strings.TrimSpace(l.Name)) != want {
			continue
		}
		if found >= 0 {
			return service.TaskList{}, -1, fmt.Errorf("%w: %s", errAmbiguousList, name)
		}
		found = i
	}
	if found < 0 {
		return service.TaskList{}, -1, fmt.Errorf("%w: %s", errListNotFound, name)
	}
	return lists[found], found, nil
}

// listByLetter returns the list shown under letter.
func listByLetter(lists []service.TaskList, letter rune) (service.TaskList, error) {
	for i, l := range lists {
		if output.Letter(i) == letter {
			return l, nil
		}
	}
	return service.TaskList{}, fmt.Errorf("%w: %c", errLetterNotFound, letter)
}

// findTask returns the num-th (1-based) task of a list.
func findTask(list service.TaskList, num int) (service.Task, error) {
	if num < 1 || num > len(list.Tasks) {
		return service.Task{}, fmt.Errorf("%w: %d", errOutOfRange, num)
	}
	return list.Tasks[num-1], nil
}

// lookupRef resolves a reference against the cached lists. listName, when
// set, names the list for a reference without a letter.
func lookupRef(lists []service.TaskList, listName string, ref TaskRef) (service.TaskList, service.Task, error) {
	if listName != "" && ref.HasLetter {
		return service.TaskList{}, service.Task{}, errors.New("cannot use both --list and list letter")
	}

	var list service.TaskList
	var err error
	switch {
	case listName != "":
		list, _, err = resolveList(lists, listName)
	case ref.HasLetter:
		list, err = listByLetter(lists, ref.Letter)
	default:
		list, err = listByLetter(lists, 'a')
	}
	if err != nil {
		return service.TaskList{}, service.Task{}, err
	}

	task, err := findTask(list, ref.TaskNum)
	if err != nil {
		return service.TaskList{}, service.Task{}, err
	}
	return list, task, nil
}

// resolveTaskArgs parses a reference from args and resolves it, printing
// any error. It returns the exit code when resolution fails.
func resolveTaskArgs(b *board.Board, listName string, args []string, errOut io.Writer) (service.TaskList, service.Task, int) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.TaskList{}, service.Task{}, exitcode.UserError
	}
	list, task, err := lookupRef(b.Lists(), listName, ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.TaskList{}, service.Task{}, exitcode.UserError
	}
	return list, task, exitcode.Success
}

// reportError prints a board error and returns its exit code.
func reportError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, board.ErrRejected):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, service.ErrUnauthorized):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintln(errOut, "error: not found")
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}
