package tui

import (
	"fmt"
	"strings"
	"time"

	"todoboard/internal/board"
	"todoboard/internal/service"
)

const dateLayout = "2006-01-02"

// ParseQuickAdd parses one line of task input:
//
//	title words !priority @due -- description
//
// Priority accepts high, medium, low or their first letter. Due accepts a
// YYYY-MM-DD date, "today" or "tomorrow" relative to now. Everything after
// the first " -- " is the description.
func ParseQuickAdd(line string, now time.Time) (board.TaskDraft, error) {
	draft := board.EmptyDraft()

	head, desc, _ := strings.Cut(line, " -- ")
	draft.Description = strings.TrimSpace(desc)

	var title []string
	for _, word := range strings.Fields(head) {
		switch {
		case len(word) > 1 && word[0] == '!':
			p, err := parsePriority(word[1:])
			if err != nil {
				return board.TaskDraft{}, err
			}
			draft.Priority = p
		case len(word) > 1 && word[0] == '@':
			due, err := parseDue(word[1:], now)
			if err != nil {
				return board.TaskDraft{}, err
			}
			draft.DueDate = due
		default:
			title = append(title, word)
		}
	}
	draft.Title = strings.Join(title, " ")
	if draft.Title == "" {
		return board.TaskDraft{}, fmt.Errorf("title is required")
	}
	return draft, nil
}

// FormatQuickAdd renders a draft back into quick-add syntax.
func FormatQuickAdd(d board.TaskDraft) string {
	parts := []string{}
	if d.Title != "" {
		parts = append(parts, d.Title)
	}
	if p := d.Priority.OrDefault(); p != service.PriorityLow {
		parts = append(parts, "!"+string(p))
	}
	if d.DueDate != "" {
		parts = append(parts, "@"+d.DueDate)
	}
	s := strings.Join(parts, " ")
	if d.Description != "" {
		s += " -- " + d.Description
	}
	return s
}

func parsePriority(s string) (service.Priority, error) {
	switch strings.ToLower(s) {
	case "h":
		return service.PriorityHigh, nil
	case "m":
		return service.PriorityMedium, nil
	case "l":
		return service.PriorityLow, nil
	}
	return service.ParsePriority(s)
}

func parseDue(s string, now time.Time) (string, error) {
	switch strings.ToLower(s) {
	case "today":
		return now.Format(dateLayout), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(dateLayout), nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", fmt.Errorf("invalid due date %q (use YYYY-MM-DD)", s)
	}
	return s, nil
}
