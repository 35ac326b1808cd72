// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"todoboard/internal/service"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	dateLayout = "2006-01-02"
)

// Letter returns the reference letter of the i-th list (0-based), or 0
// when there are more lists than letters.
func Letter(i int) rune {
	if i < 0 || i >= 26 {
		return 0
	}
	return rune('a' + i)
}

// FormatListHeader formats a list section header.
// Format: separator, "{letter}  {NAME}", separator.
func FormatListHeader(w io.Writer, letter rune, name string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintf(w, "%s  %s\n", letterLabel(letter), normalizeListName(name))
	fmt.Fprintln(w, ListSeparator)
}

// FormatListName formats a list line for the lists command.
// Format: "{letter}  {NAME} ({N})".
func FormatListName(w io.Writer, letter rune, list service.TaskList) {
	fmt.Fprintf(w, "%s  %s (%d)\n", letterLabel(letter), normalizeListName(list.Name), len(list.Tasks))
}

// FormatTaskIndented formats a task line for a list section.
// Format: "    {N:>4}  {TITLE}{DETAILS}\n"; details name a non-low priority
// and the due date relative to now.
func FormatTaskIndented(w io.Writer, num int, task service.Task, now time.Time) {
	fmt.Fprintf(w, "    %4d  %s%s\n", num, normalizeTitle(task.Title), details(task, now))
}

// FormatTaskDetail prints every field of one task.
func FormatTaskDetail(w io.Writer, task service.Task, now time.Time) {
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "priority:    %s\n", task.Priority.OrDefault())
	if task.DueDate != "" {
		fmt.Fprintf(w, "due:         %s (%s)\n", task.DueDate, RelativeDue(task.DueDate, now))
	}
	if task.Description != "" {
		fmt.Fprintf(w, "description: %s\n", task.Description)
	}
}

// RelativeDue renders a YYYY-MM-DD date relative to now, e.g.
// "2 days from now". Unparseable dates are returned unchanged.
func RelativeDue(date string, now time.Time) string {
	due, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		return date
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if due.Equal(today) {
		return "today"
	}
	return humanize.RelTime(due, today, "ago", "from now")
}

func details(task service.Task, now time.Time) string {
	var parts []string
	if p := task.Priority.OrDefault(); p != service.PriorityLow {
		parts = append(parts, "!"+string(p))
	}
	if task.DueDate != "" {
		parts = append(parts, "due "+RelativeDue(task.DueDate, now))
	}
	if len(parts) == 0 {
		return ""
	}
	return "  [" + strings.Join(parts, ", ") + "]"
}

func letterLabel(letter rune) string {
	if letter == 0 {
		return "-"
	}
	return string(letter)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeListName normalizes a list name for display.
// Empty or whitespace-only names become "(untitled)".
func normalizeListName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(untitled)"
	}
	return name
}
