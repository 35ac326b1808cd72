package board

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"todoboard/internal/service"
)

// DragState is the state of the drag-and-drop controller.
type DragState int

const (
	DragIdle DragState = iota
	DragDragging
	DragDropping
)

func (s DragState) String() string {
	switch s {
	case DragDragging:
		return "dragging"
	case DragDropping:
		return "dropping"
	default:
		return "idle"
	}
}

// DraggedTask is the task being dragged and the list it came from.
type DraggedTask struct {
	Task       service.Task
	FromListID string
}

// Outcome describes what a drop did.
type Outcome string

const (
	OutcomeNone        Outcome = "none"
	OutcomeMoved       Outcome = "moved"
	OutcomeReordered   Outcome = "reordered"
	OutcomePartialMove Outcome = "partial_move"
)

// DropResult reports the effect of a drop.
type DropResult struct {
	Outcome Outcome
	// Task is the moved task; after a cross-list move it carries the new ID.
	Task service.Task
}

// DragController tracks one dragged task at a time and applies drops.
type DragController struct {
	store   service.Store
	cache   *Cache
	session *Session
	logger  *log.Logger
	opts    options

	mu      sync.Mutex
	state   DragState
	dragged *DraggedTask
}

// NewDragController creates an idle controller.
func NewDragController(store service.Store, cache *Cache, session *Session, logger *log.Logger, opts ...Option) *DragController {
	return &DragController{
		store:   store,
		cache:   cache,
		session: session,
		logger:  logger,
		opts:    buildOptions(opts),
	}
}

// StartDrag records task as dragged from fromListID, replacing any earlier record.
func (d *DragController) StartDrag(task service.Task, fromListID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dragged = &DraggedTask{Task: task, FromListID: fromListID}
	d.state = DragDragging
}

// Dragged returns the current drag record, if any.
func (d *DragController) Dragged() (DraggedTask, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dragged == nil {
		return DraggedTask{}, false
	}
	return *d.dragged, true
}

// State returns the controller state.
func (d *DragController) State() DragState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Cancel drops the drag record without moving anything.
func (d *DragController) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dragged = nil
	if d.state == DragDragging {
		d.state = DragIdle
	}
}

// take removes the drag record for a drop. A drag started while the drop
// is in flight is kept.
func (d *DragController) take() (DraggedTask, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dragged == nil {
		return DraggedTask{}, false
	}
	dt := *d.dragged
	d.dragged = nil
	d.state = DragDropping
	return dt, true
}

func (d *DragController) finish() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == DragDropping {
		d.state = DragIdle
	}
}

// DropOnList drops the dragged task on a list.
//
// Dropping on the source list does nothing. Otherwise the task is moved:
// a copy without its ID is inserted into the target list, then the original
// is deleted, then the cache is patched without a refresh. A failed insert
// aborts the move with the task untouched. A failed delete after a
// successful insert returns ErrPartialMove and the cache shows the task in
// both lists, matching the store.
func (d *DragController) DropOnList(ctx context.Context, toListID string) (DropResult, error) {
	dt, ok := d.take()
	if !ok {
		return DropResult{Outcome: OutcomeNone}, nil
	}
	defer d.finish()

	if dt.FromListID == toListID {
		return DropResult{Outcome: OutcomeNone, Task: dt.Task}, nil
	}
	return d.move(ctx, dt, toListID)
}

// DropOnTask drops the dragged task on targetTaskID in listID.
//
// Within the same list the task is spliced out and reinserted at the
// target's index; nothing is written unless durable ordering is enabled,
// so the next refresh restores store order. Dropping a task onto itself
// changes nothing. A drop on a task of another list moves the dragged task
// to that list, as DropOnList does.
func (d *DragController) DropOnTask(ctx context.Context, listID, targetTaskID string) (DropResult, error) {
	dt, ok := d.take()
	if !ok {
		return DropResult{Outcome: OutcomeNone}, nil
	}
	defer d.finish()

	if dt.FromListID != listID {
		return d.move(ctx, dt, listID)
	}

	tasks, ok := d.cache.reorder(listID, dt.Task.ID, targetTaskID)
	if !ok {
		return DropResult{Outcome: OutcomeNone, Task: dt.Task}, nil
	}
	result := DropResult{Outcome: OutcomeReordered, Task: dt.Task}
	if !d.opts.durableOrder {
		return result, nil
	}
	return result, d.persistOrder(ctx, listID, tasks)
}

func (d *DragController) move(ctx context.Context, dt DraggedTask, toListID string) (DropResult, error) {
	userID := d.session.UserID()
	if userID == "" {
		return DropResult{Outcome: OutcomeNone, Task: dt.Task}, ErrRejected
	}

	fields := dt.Task.Fields()
	// The task goes to the end of the target list.
	fields.Position = 0

	newID, err := d.store.InsertTask(ctx, userID, toListID, fields)
	if err != nil {
		d.logger.Error("error moving task", "stage", "insert", "task_id", dt.Task.ID,
			"from_list_id", dt.FromListID, "to_list_id", toListID, "err", err)
		return DropResult{Outcome: OutcomeNone, Task: dt.Task}, remoteErr(WriteFailure, "insert moved task", err)
	}
	moved := service.NewTask(newID, fields)

	if err := d.store.DeleteTask(ctx, userID, dt.FromListID, dt.Task.ID); err != nil {
		d.logger.Error("error moving task", "stage", "delete", "task_id", dt.Task.ID,
			"new_task_id", newID, "from_list_id", dt.FromListID, "to_list_id", toListID, "err", err)
		d.cache.applyMove(dt.FromListID, toListID, dt.Task.ID, moved, false)
		return DropResult{Outcome: OutcomePartialMove, Task: moved},
			&RemoteError{Kind: DeleteFailure, Op: "delete moved task", Err: partialMoveError{err}}
	}

	d.cache.applyMove(dt.FromListID, toListID, dt.Task.ID, moved, true)
	return DropResult{Outcome: OutcomeMoved, Task: moved}, nil
}

// partialMoveError lets errors.Is match both ErrPartialMove and the store error.
type partialMoveError struct{ err error }

func (e partialMoveError) Error() string   { return ErrPartialMove.Error() + ": " + e.err.Error() }
func (e partialMoveError) Unwrap() []error { return []error{ErrPartialMove, e.err} }

// persistOrder writes 1-based positions for tasks whose position changed.
func (d *DragController) persistOrder(ctx context.Context, listID string, tasks []service.Task) error {
	userID := d.session.UserID()
	if userID == "" {
		return nil
	}
	written := make(map[string]int)
	var firstErr error
	for i, t := range tasks {
		pos := i + 1
		if t.Position == pos {
			continue
		}
		if err := d.store.UpdateTask(ctx, userID, listID, t.ID, service.TaskPatch{Position: &pos}); err != nil {
			d.logger.Error("error saving task order", "list_id", listID, "task_id", t.ID, "err", err)
			if firstErr == nil {
				firstErr = remoteErr(WriteFailure, "update position", err)
			}
			continue
		}
		written[t.ID] = pos
	}
	d.cache.setPositions(listID, written)
	return firstErr
}
