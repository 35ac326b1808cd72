// Package board holds the signed-in user's lists and tasks in memory and
// implements list/task creation, session binding and drag-and-drop moves on
// top of a service.Store.
package board

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"todoboard/internal/service"
)

// DraftField names an input field of a per-list task draft.
type DraftField string

const (
	DraftTitle       DraftField = "title"
	DraftDescription DraftField = "description"
	DraftDueDate     DraftField = "dueDate"
	DraftPriority    DraftField = "priority"
)

// TaskDraft is the pending input for a new task in one list.
type TaskDraft struct {
	Title       string
	Description string
	DueDate     string
	Priority    service.Priority
}

// EmptyDraft returns a draft with empty fields and low priority.
func EmptyDraft() TaskDraft {
	return TaskDraft{Priority: service.PriorityLow}
}

// Option configures a Cache or DragController.
type Option func(*options)

type options struct {
	durableOrder bool
}

// WithDurableOrder makes same-list reorders persistent: positions are written
// to the store and refreshed lists are sorted by position. Without it a
// reorder is local only and the next refresh restores store order.
func WithDurableOrder(enabled bool) Option {
	return func(o *options) {
		o.durableOrder = enabled
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Cache is the in-memory copy of a user's lists and tasks.
// It is replaced wholesale by each refresh; there is no incremental sync.
type Cache struct {
	store  service.Store
	logger *log.Logger
	opts   options

	mu     sync.RWMutex
	lists  []service.TaskList
	drafts map[string]TaskDraft
}

// NewCache creates an empty cache backed by store.
func NewCache(store service.Store, logger *log.Logger, opts ...Option) *Cache {
	return &Cache{
		store:  store,
		logger: logger,
		opts:   buildOptions(opts),
		drafts: make(map[string]TaskDraft),
	}
}

// Lists returns a deep copy of the cached lists.
func (c *Cache) Lists() []service.TaskList {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]service.TaskList, len(c.lists))
	for i, l := range c.lists {
		out[i] = l.Clone()
	}
	return out
}

// List returns a copy of one cached list.
func (c *Cache) List(listID string) (service.TaskList, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, l := range c.lists {
		if l.ID == listID {
			return l.Clone(), true
		}
	}
	return service.TaskList{}, false
}

// Task returns a cached task by list and task ID.
func (c *Cache) Task(listID, taskID string) (service.Task, bool) {
	l, ok := c.List(listID)
	if !ok {
		return service.Task{}, false
	}
	for _, t := range l.Tasks {
		if t.ID == taskID {
			return t, true
		}
	}
	return service.Task{}, false
}

// Refresh fetches every list of the user and each list's tasks, then
// replaces the cache in one step. On failure the error is logged and the
// cache keeps its previous contents.
//
// Refreshes are not cancelled or sequenced: when two overlap, whichever
// completes last wins, even if it started first.
func (c *Cache) Refresh(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrRejected
	}

	lists, err := c.store.ListLists(ctx, userID)
	if err != nil {
		c.logger.Error("error fetching lists", "user_id", userID, "err", err)
		return remoteErr(FetchFailure, "list lists", err)
	}

	fetched := make([]service.TaskList, 0, len(lists))
	for _, l := range lists {
		tasks, err := c.store.ListTasks(ctx, userID, l.ID)
		if err != nil {
			c.logger.Error("error fetching tasks", "user_id", userID, "list_id", l.ID, "err", err)
			return remoteErr(FetchFailure, "list tasks", err)
		}
		if tasks == nil {
			tasks = []service.Task{}
		}
		if c.opts.durableOrder {
			sortByPosition(tasks)
		}
		fetched = append(fetched, service.TaskList{ID: l.ID, Name: l.Name, Tasks: tasks})
	}

	c.mu.Lock()
	c.lists = fetched
	c.mu.Unlock()
	c.logger.Debug("cache refreshed", "user_id", userID, "lists", len(fetched))
	return nil
}

// sortByPosition orders positioned tasks first by position; unpositioned
// tasks follow in store order.
func sortByPosition(tasks []service.Task) {
	slices.SortStableFunc(tasks, func(a, b service.Task) int {
		switch {
		case a.Position == b.Position:
			return 0
		case a.Position == 0:
			return 1
		case b.Position == 0:
			return -1
		case a.Position < b.Position:
			return -1
		default:
			return 1
		}
	})
}

// CreateList inserts a list named after the trimmed name and refreshes.
// An empty name or missing user is rejected without a remote call.
func (c *Cache) CreateList(ctx context.Context, userID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || userID == "" {
		return ErrRejected
	}

	if _, err := c.store.InsertList(ctx, userID, name); err != nil {
		c.logger.Error("error adding list", "user_id", userID, "name", name, "err", err)
		return remoteErr(WriteFailure, "insert list", err)
	}

	_ = c.Refresh(ctx, userID)
	return nil
}

// CreateTask inserts a task built from draft into the list, refreshes, and
// resets the list's draft. An empty title or missing user is rejected
// without a remote call.
func (c *Cache) CreateTask(ctx context.Context, userID, listID string, draft TaskDraft) error {
	title := strings.TrimSpace(draft.Title)
	if title == "" || userID == "" {
		return ErrRejected
	}

	fields := service.TaskFields{
		Title:       title,
		Description: draft.Description,
		DueDate:     strings.TrimSpace(draft.DueDate),
		Priority:    draft.Priority.OrDefault(),
	}
	if _, err := c.store.InsertTask(ctx, userID, listID, fields); err != nil {
		c.logger.Error("error adding task", "user_id", userID, "list_id", listID, "err", err)
		return remoteErr(WriteFailure, "insert task", err)
	}

	_ = c.Refresh(ctx, userID)

	c.mu.Lock()
	c.drafts[listID] = EmptyDraft()
	c.mu.Unlock()
	return nil
}

// DeleteTask removes a task from the store and refreshes.
func (c *Cache) DeleteTask(ctx context.Context, userID, listID, taskID string) error {
	if userID == "" {
		return ErrRejected
	}
	if err := c.store.DeleteTask(ctx, userID, listID, taskID); err != nil {
		c.logger.Error("error deleting task", "user_id", userID, "list_id", listID, "task_id", taskID, "err", err)
		return remoteErr(DeleteFailure, "delete task", err)
	}
	_ = c.Refresh(ctx, userID)
	return nil
}

// UpdateTask applies patch to a stored task and refreshes.
// A patch that would leave the title empty is rejected.
func (c *Cache) UpdateTask(ctx context.Context, userID, listID, taskID string, patch service.TaskPatch) error {
	if userID == "" || patch.IsEmpty() {
		return ErrRejected
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return ErrRejected
		}
		patch.Title = &title
	}
	if err := c.store.UpdateTask(ctx, userID, listID, taskID, patch); err != nil {
		c.logger.Error("error updating task", "user_id", userID, "list_id", listID, "task_id", taskID, "err", err)
		return remoteErr(WriteFailure, "update task", err)
	}
	_ = c.Refresh(ctx, userID)
	return nil
}

// Draft returns the pending task input of a list.
func (c *Cache) Draft(listID string) TaskDraft {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.drafts[listID]
	if !ok {
		return EmptyDraft()
	}
	return d
}

// SetDraftField updates one field of a list's task draft.
// Unknown fields are ignored.
func (c *Cache) SetDraftField(listID string, field DraftField, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.drafts[listID]
	if !ok {
		d = EmptyDraft()
	}
	switch field {
	case DraftTitle:
		d.Title = value
	case DraftDescription:
		d.Description = value
	case DraftDueDate:
		d.DueDate = value
	case DraftPriority:
		d.Priority = service.Priority(value)
	default:
		return
	}
	c.drafts[listID] = d
}

// Clear empties the cache and all drafts.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists = nil
	c.drafts = make(map[string]TaskDraft)
}

// applyMove patches the cache after a cross-list move: moved is appended to
// the target list and, when removeSource is set, oldTaskID is dropped from
// the source list.
func (c *Cache) applyMove(fromListID, toListID, oldTaskID string, moved service.Task, removeSource bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lists {
		l := &c.lists[i]
		switch {
		case l.ID == toListID:
			tasks := make([]service.Task, 0, len(l.Tasks)+1)
			tasks = append(tasks, l.Tasks...)
			l.Tasks = append(tasks, moved)
		case l.ID == fromListID && removeSource:
			l.Tasks = slices.DeleteFunc(slices.Clone(l.Tasks), func(t service.Task) bool {
				return t.ID == oldTaskID
			})
		}
	}
}

// reorder moves taskID within listID to the index beforeTaskID held before
// the move. It returns the new task order, or false when either task is not
// in the list.
func (c *Cache) reorder(listID, taskID, beforeTaskID string) ([]service.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lists {
		l := &c.lists[i]
		if l.ID != listID {
			continue
		}
		from := slices.IndexFunc(l.Tasks, func(t service.Task) bool { return t.ID == taskID })
		to := slices.IndexFunc(l.Tasks, func(t service.Task) bool { return t.ID == beforeTaskID })
		if from < 0 || to < 0 {
			return nil, false
		}
		tasks := slices.Clone(l.Tasks)
		moved := tasks[from]
		tasks = slices.Delete(tasks, from, from+1)
		tasks = slices.Insert(tasks, to, moved)
		l.Tasks = tasks
		return slices.Clone(tasks), true
	}
	return nil, false
}

// setPositions records persisted positions in the cached list.
func (c *Cache) setPositions(listID string, positions map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lists {
		if c.lists[i].ID != listID {
			continue
		}
		for j := range c.lists[i].Tasks {
			if p, ok := positions[c.lists[i].Tasks[j].ID]; ok {
				c.lists[i].Tasks[j].Position = p
			}
		}
	}
}
