package board

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"todoboard/internal/service"
)

// Board wires the session, cache, drag controller and session binder
// around one store and auth provider. Its methods act for the signed-in user.
type Board struct {
	store   service.Store
	auth    service.Auth
	logger  *log.Logger
	session *Session
	cache   *Cache
	drag    *DragController
	binder  *SessionBinder
}

// New creates a board. Call Start to bind it to the auth provider.
func New(store service.Store, auth service.Auth, logger *log.Logger, opts ...Option) *Board {
	session := NewSession()
	cache := NewCache(store, logger, opts...)
	return &Board{
		store:   store,
		auth:    auth,
		logger:  logger,
		session: session,
		cache:   cache,
		drag:    NewDragController(store, cache, session, logger, opts...),
		binder:  NewSessionBinder(auth, session, cache, logger),
	}
}

// Start binds the board to auth state changes. A signed-in user is
// loaded before Start returns; a failed load is returned and the board
// stays bound.
func (b *Board) Start(ctx context.Context) error {
	return b.binder.Bind(ctx)
}

// Close unbinds from the auth provider and closes the store if it is closable.
func (b *Board) Close() error {
	b.binder.Close()
	if c, ok := b.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// User returns the signed-in user, if any.
func (b *Board) User() (service.User, bool) { return b.session.User() }

// Lists returns a copy of the cached lists.
func (b *Board) Lists() []service.TaskList { return b.cache.Lists() }

// List returns a copy of one cached list.
func (b *Board) List(listID string) (service.TaskList, bool) { return b.cache.List(listID) }

// Task returns a cached task.
func (b *Board) Task(listID, taskID string) (service.Task, bool) { return b.cache.Task(listID, taskID) }

// Refresh reloads the cache for the signed-in user.
func (b *Board) Refresh(ctx context.Context) error {
	return b.cache.Refresh(ctx, b.session.UserID())
}

// CreateList creates a list for the signed-in user.
func (b *Board) CreateList(ctx context.Context, name string) error {
	return b.cache.CreateList(ctx, b.session.UserID(), name)
}

// AddTask creates a task from draft in a list.
func (b *Board) AddTask(ctx context.Context, listID string, draft TaskDraft) error {
	return b.cache.CreateTask(ctx, b.session.UserID(), listID, draft)
}

// SubmitTask creates a task from the list's stored draft.
func (b *Board) SubmitTask(ctx context.Context, listID string) error {
	return b.AddTask(ctx, listID, b.cache.Draft(listID))
}

// Draft returns a list's stored task draft.
func (b *Board) Draft(listID string) TaskDraft { return b.cache.Draft(listID) }

// UpdateDraft sets one field of a list's stored task draft.
func (b *Board) UpdateDraft(listID string, field DraftField, value string) {
	b.cache.SetDraftField(listID, field, value)
}

// DeleteTask deletes a task.
func (b *Board) DeleteTask(ctx context.Context, listID, taskID string) error {
	return b.cache.DeleteTask(ctx, b.session.UserID(), listID, taskID)
}

// UpdateTask edits a task.
func (b *Board) UpdateTask(ctx context.Context, listID, taskID string, patch service.TaskPatch) error {
	return b.cache.UpdateTask(ctx, b.session.UserID(), listID, taskID, patch)
}

// StartDrag starts dragging a task.
func (b *Board) StartDrag(task service.Task, fromListID string) { b.drag.StartDrag(task, fromListID) }

// Dragged returns the current drag record.
func (b *Board) Dragged() (DraggedTask, bool) { return b.drag.Dragged() }

// DragState returns the drag controller state.
func (b *Board) DragState() DragState { return b.drag.State() }

// CancelDrag drops the drag record.
func (b *Board) CancelDrag() { b.drag.Cancel() }

// DropOnList drops the dragged task on a list.
func (b *Board) DropOnList(ctx context.Context, listID string) (DropResult, error) {
	return b.drag.DropOnList(ctx, listID)
}

// DropOnTask drops the dragged task on a task.
func (b *Board) DropOnTask(ctx context.Context, listID, taskID string) (DropResult, error) {
	return b.drag.DropOnTask(ctx, listID, taskID)
}

// SignOut signs out through the auth provider. The binder then clears the cache.
func (b *Board) SignOut(ctx context.Context) error {
	b.drag.Cancel()
	if err := b.auth.SignOut(ctx); err != nil {
		b.logger.Error("error signing out", "err", err)
		return err
	}
	return nil
}
