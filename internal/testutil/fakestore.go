// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"todoboard/internal/service"
)

// FakeStore is an in-memory implementation of service.Store for testing.
// IDs are assigned sequentially ("list-1", "task-1", ...).
type FakeStore struct {
	mu     sync.RWMutex
	lists  map[string][]service.TaskList // userID -> lists
	tasks  map[string][]service.Task     // listID -> tasks
	owner  map[string]string             // listID -> userID
	nextID int
	calls  map[string]int

	// Error injection for testing
	ListListsErr  error
	InsertListErr error
	ListTasksErr  map[string]error // listID -> error
	InsertTaskErr error
	DeleteTaskErr error
	UpdateTaskErr error

	// BeforeListTasks, when set, runs at the start of every ListTasks call.
	BeforeListTasks func(listID string)
}

// NewFakeStore creates an empty FakeStore.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		lists:        make(map[string][]service.TaskList),
		tasks:        make(map[string][]service.Task),
		owner:        make(map[string]string),
		calls:        make(map[string]int),
		ListTasksErr: make(map[string]error),
	}
}

// AddList adds a list with a fixed ID for a user.
func (f *FakeStore) AddList(userID, id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[userID] = append(f.lists[userID], service.TaskList{ID: id, Name: name})
	f.owner[id] = userID
	if _, ok := f.tasks[id]; !ok {
		f.tasks[id] = nil
	}
}

// AddTask adds a task with a fixed ID to a list.
func (f *FakeStore) AddTask(listID, taskID, title string) {
	f.AddTaskFields(listID, taskID, service.TaskFields{Title: title, Priority: service.PriorityLow})
}

// AddTaskFields adds a task with a fixed ID and the given fields to a list.
func (f *FakeStore) AddTaskFields(listID, taskID string, fields service.TaskFields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[listID] = append(f.tasks[listID], service.NewTask(taskID, fields))
}

// Tasks returns a copy of a list's stored tasks without counting a call.
func (f *FakeStore) Tasks(listID string) []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks[listID]))
	copy(out, f.tasks[listID])
	return out
}

// Calls returns how many times the named method was called.
func (f *FakeStore) Calls(method string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.calls[method]
}

// TotalCalls returns the number of store calls of any kind.
func (f *FakeStore) TotalCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *FakeStore) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

func (f *FakeStore) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *FakeStore) ownsList(userID, listID string) bool {
	return f.owner[listID] == userID
}

// ListLists implements service.Store.
func (f *FakeStore) ListLists(ctx context.Context, userID string) ([]service.TaskList, error) {
	f.record("ListLists")
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.TaskList, len(f.lists[userID]))
	copy(result, f.lists[userID])
	return result, nil
}

// InsertList implements service.Store.
func (f *FakeStore) InsertList(ctx context.Context, userID, name string) (string, error) {
	f.record("InsertList")
	if f.InsertListErr != nil {
		return "", f.InsertListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.newID("list")
	f.lists[userID] = append(f.lists[userID], service.TaskList{ID: id, Name: name})
	f.owner[id] = userID
	f.tasks[id] = nil
	return id, nil
}

// ListTasks implements service.Store.
func (f *FakeStore) ListTasks(ctx context.Context, userID, listID string) ([]service.Task, error) {
	f.record("ListTasks")
	if f.BeforeListTasks != nil {
		f.BeforeListTasks(listID)
	}
	if err, ok := f.ListTasksErr[listID]; ok && err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.ownsList(userID, listID) {
		return nil, service.ErrNotFound
	}
	result := make([]service.Task, len(f.tasks[listID]))
	copy(result, f.tasks[listID])
	return result, nil
}

// InsertTask implements service.Store.
func (f *FakeStore) InsertTask(ctx context.Context, userID, listID string, fields service.TaskFields) (string, error) {
	f.record("InsertTask")
	if f.InsertTaskErr != nil {
		return "", f.InsertTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ownsList(userID, listID) {
		return "", service.ErrNotFound
	}
	id := f.newID("task")
	f.tasks[listID] = append(f.tasks[listID], service.NewTask(id, fields))
	return id, nil
}

// DeleteTask implements service.Store.
func (f *FakeStore) DeleteTask(ctx context.Context, userID, listID, taskID string) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ownsList(userID, listID) {
		return service.ErrNotFound
	}
	tasks := f.tasks[listID]
	for i, t := range tasks {
		if t.ID == taskID {
			f.tasks[listID] = append(tasks[:i:i], tasks[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

// UpdateTask implements service.Store.
func (f *FakeStore) UpdateTask(ctx context.Context, userID, listID, taskID string, patch service.TaskPatch) error {
	f.record("UpdateTask")
	if f.UpdateTaskErr != nil {
		return f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ownsList(userID, listID) {
		return service.ErrNotFound
	}
	for i, t := range f.tasks[listID] {
		if t.ID == taskID {
			f.tasks[listID][i] = patch.Apply(t)
			return nil
		}
	}
	return service.ErrNotFound
}
