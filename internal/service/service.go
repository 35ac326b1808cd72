// Package service defines the backend-agnostic interfaces for list and task storage.
package service

import "context"

// Store is the remote document store holding each user's lists and their tasks.
// Lists live at users/{userID}/todoLists and tasks at
// users/{userID}/todoLists/{listID}/tasks.
// Views and the board never import a backend SDK directly.
type Store interface {
	// ListLists returns all lists of the user in store order.
	// Tasks are not populated.
	ListLists(ctx context.Context, userID string) ([]TaskList, error)

	// InsertList creates a list and returns its new ID.
	InsertList(ctx context.Context, userID, name string) (string, error)

	// ListTasks returns all tasks of a list in store order.
	ListTasks(ctx context.Context, userID, listID string) ([]Task, error)

	// InsertTask creates a task in a list and returns its new ID.
	InsertTask(ctx context.Context, userID, listID string, fields TaskFields) (string, error)

	// DeleteTask deletes a task from a list.
	DeleteTask(ctx context.Context, userID, listID, taskID string) error

	// UpdateTask applies a partial update to a task.
	UpdateTask(ctx context.Context, userID, listID, taskID string, patch TaskPatch) error
}

// Auth is the authentication provider.
type Auth interface {
	// CurrentUser returns the signed-in user, if any.
	CurrentUser() (User, bool)

	// OnAuthStateChanged registers fn for sign-in state transitions.
	// fn is called once right away with the current state, then on every
	// change; a nil user means signed out. The returned func unregisters fn.
	OnAuthStateChanged(fn func(user *User)) (unsubscribe func())

	// SignOut ends the current session.
	SignOut(ctx context.Context) error
}
