package googletasks

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	tasks "google.golang.org/api/tasks/v1"

	"todoboard/internal/service"
)

// Google Tasks has no priority or custom ordering fields, so both travel in
// a trailer line at the end of the task notes:
//
//	[todoboard priority=high position=3]
var trailerRe = regexp.MustCompile(`(?:^|\n)\[todoboard priority=(\w*) position=(\d+)\]\s*$`)

const dateLayout = "2006-01-02"

func encodeNotes(description string, priority service.Priority, position int) string {
	trailer := fmt.Sprintf("[todoboard priority=%s position=%d]", priority.OrDefault(), position)
	if description == "" {
		return trailer
	}
	return description + "\n" + trailer
}

func decodeNotes(notes string) (description string, priority service.Priority, position int) {
	m := trailerRe.FindStringSubmatchIndex(notes)
	if m == nil {
		return notes, service.PriorityLow, 0
	}
	description = notes[:m[0]]
	p, err := service.ParsePriority(notes[m[2]:m[3]])
	if err != nil {
		p = service.PriorityLow
	}
	position, _ = strconv.Atoi(notes[m[4]:m[5]])
	return description, p, position
}

// encodeDue converts YYYY-MM-DD to the RFC 3339 timestamp the API expects.
func encodeDue(date string) string {
	if date == "" {
		return ""
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return ""
	}
	return d.UTC().Format("2006-01-02T15:04:05.000Z")
}

func decodeDue(due string) string {
	if due == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, due)
	if err != nil {
		if len(due) >= len(dateLayout) {
			return due[:len(dateLayout)]
		}
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func toAPI(f service.TaskFields) *tasks.Task {
	return &tasks.Task{
		Title: f.Title,
		Notes: encodeNotes(f.Description, f.Priority, f.Position),
		Due:   encodeDue(f.DueDate),
	}
}

func fromAPI(t *tasks.Task) service.Task {
	desc, priority, position := decodeNotes(t.Notes)
	return service.Task{
		ID:          t.Id,
		Title:       t.Title,
		Description: desc,
		DueDate:     decodeDue(t.Due),
		Priority:    priority,
		Position:    position,
	}
}
