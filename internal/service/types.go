// Package service defines the backend-agnostic interfaces for list and task storage.
package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by stores when a list or task does not exist for the user.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized is returned by stores whose credentials are missing, expired or revoked.
var ErrUnauthorized = errors.New("unauthorized")

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority parses a priority name (case-insensitive, trimmed).
// An empty string yields PriorityLow.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("invalid priority: %s", s)
	}
}

// OrDefault returns p, or PriorityLow when p is empty.
func (p Priority) OrDefault() Priority {
	if p == "" {
		return PriorityLow
	}
	return p
}

// User is an authenticated account.
type User struct {
	ID string
}

// TaskFields are the stored fields of a task, without its identity.
type TaskFields struct {
	Title       string
	Description string
	DueDate     string // YYYY-MM-DD or empty
	Priority    Priority
	Position    int // 0 means unset
}

// Task represents a single task item.
type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     string
	Priority    Priority
	Position    int
}

// Fields returns a copy of the task's fields without its identity.
func (t Task) Fields() TaskFields {
	return TaskFields{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Position:    t.Position,
	}
}

// NewTask builds a task from stored fields and an identity.
func NewTask(id string, f TaskFields) Task {
	return Task{
		ID:          id,
		Title:       f.Title,
		Description: f.Description,
		DueDate:     f.DueDate,
		Priority:    f.Priority,
		Position:    f.Position,
	}
}

// TaskPatch holds a partial update; nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *string
	Priority    *Priority
	Position    *int
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil &&
		p.Priority == nil && p.Position == nil
}

// Apply returns t with the patch applied.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Position != nil {
		t.Position = *p.Position
	}
	return t
}

// TaskList represents a named list and, once fetched, its tasks in store order.
type TaskList struct {
	ID    string
	Name  string
	Tasks []Task
}

// Clone returns a deep copy of the list.
func (l TaskList) Clone() TaskList {
	out := l
	if l.Tasks != nil {
		out.Tasks = make([]Task, len(l.Tasks))
		copy(out.Tasks, l.Tasks)
	}
	return out
}
