package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"todoboard/internal/board"
	"todoboard/internal/service"
)

type taskJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
	Priority    string `json:"priority"`
	Position    int    `json:"position,omitempty"`
}

type listJSON struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Tasks []taskJSON `json:"tasks"`
}

type draftJSON struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
}

type dragJSON struct {
	State      string    `json:"state"`
	FromListID string    `json:"from_list_id,omitempty"`
	Task       *taskJSON `json:"task,omitempty"`
}

type dropJSON struct {
	Outcome string   `json:"outcome"`
	Task    taskJSON `json:"task"`
	Error   string   `json:"error,omitempty"`
}

func toTaskJSON(t service.Task) taskJSON {
	return taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    string(t.Priority.OrDefault()),
		Position:    t.Position,
	}
}

func toListJSON(l service.TaskList) listJSON {
	out := listJSON{ID: l.ID, Name: l.Name, Tasks: make([]taskJSON, 0, len(l.Tasks))}
	for _, t := range l.Tasks {
		out.Tasks = append(out.Tasks, toTaskJSON(t))
	}
	return out
}

func toListsJSON(lists []service.TaskList) []listJSON {
	out := make([]listJSON, 0, len(lists))
	for _, l := range lists {
		out = append(out, toListJSON(l))
	}
	return out
}

func toDraftJSON(d board.TaskDraft) draftJSON {
	return draftJSON{
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		Priority:    string(d.Priority.OrDefault()),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeBoardError maps board and store errors to HTTP statuses.
func writeBoardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, board.ErrRejected):
		writeError(w, http.StatusBadRequest, "rejected: empty name or title")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func validDate(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// handleSignIn issues a bearer token. The request must carry the server's
// access key, and while a user is signed in only that user can sign in.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"user_id"`
		Key    string `json:"key"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	userID := strings.TrimSpace(body.UserID)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if s.opts.AccessKey == "" || subtle.ConstantTimeCompare([]byte(body.Key), []byte(s.opts.AccessKey)) != 1 {
		s.logger.Warn("sign-in refused", "user_id", userID, "reason", "access key")
		writeError(w, http.StatusUnauthorized, "invalid access key")
		return
	}
	if current, ok := s.board.User(); ok && current.ID != userID {
		s.logger.Warn("sign-in refused", "user_id", userID, "reason", "another user is signed in")
		writeError(w, http.StatusForbidden, "another user is signed in")
		return
	}
	token, err := s.auth.SignIn(r.Context(), userID)
	if err != nil {
		s.logger.Error("error signing in", "user_id", userID, "err", err)
		writeError(w, http.StatusInternalServerError, "sign-in failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token, "user_id": userID})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"user_id": user.ID})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	if err := s.board.SignOut(r.Context()); err != nil {
		s.logger.Error("error signing out", "user_id", user.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "sign-out failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toListsJSON(s.board.Lists()))
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := s.board.CreateList(r.Context(), body.Name); err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toListsJSON(s.board.Lists()))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.board.Refresh(r.Context()); err != nil {
		writeBoardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListsJSON(s.board.Lists()))
}

// list looks up the path's list in the cache, writing 404 when it is missing.
func (s *Server) list(w http.ResponseWriter, r *http.Request) (service.TaskList, bool) {
	l, ok := s.board.List(r.PathValue("listID"))
	if !ok {
		writeError(w, http.StatusNotFound, "list not found")
	}
	return l, ok
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	l, ok := s.list(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toDraftJSON(s.board.Draft(l.ID)))
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	l, ok := s.list(w, r)
	if !ok {
		return
	}
	var body struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	field := board.DraftField(body.Field)
	switch field {
	case board.DraftTitle, board.DraftDescription:
	case board.DraftDueDate:
		if !validDate(strings.TrimSpace(body.Value)) {
			writeError(w, http.StatusBadRequest, "invalid dueDate (use YYYY-MM-DD)")
			return
		}
	case board.DraftPriority:
		p, err := service.ParsePriority(body.Value)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		body.Value = string(p)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown draft field %q", body.Field))
		return
	}
	s.board.UpdateDraft(l.ID, field, body.Value)
	writeJSON(w, http.StatusOK, toDraftJSON(s.board.Draft(l.ID)))
}

func (s *Server) handleSubmitDraft(w http.ResponseWriter, r *http.Request) {
	l, ok := s.list(w, r)
	if !ok {
		return
	}
	if err := s.board.SubmitTask(r.Context(), l.ID); err != nil {
		writeBoardError(w, err)
		return
	}
	updated, _ := s.board.List(l.ID)
	writeJSON(w, http.StatusCreated, toListJSON(updated))
}

type taskBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    *string `json:"priority"`
}

func (b taskBody) patch() (service.TaskPatch, error) {
	p := service.TaskPatch{Title: b.Title, Description: b.Description}
	if b.DueDate != nil {
		due := strings.TrimSpace(*b.DueDate)
		if !validDate(due) {
			return p, errors.New("invalid due_date (use YYYY-MM-DD)")
		}
		p.DueDate = &due
	}
	if b.Priority != nil {
		pr, err := service.ParsePriority(*b.Priority)
		if err != nil {
			return p, err
		}
		p.Priority = &pr
	}
	return p, nil
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	l, ok := s.list(w, r)
	if !ok {
		return
	}
	var body taskBody
	if !decodeBody(w, r, &body) {
		return
	}
	p, err := body.patch()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft := board.EmptyDraft()
	if p.Title != nil {
		draft.Title = *p.Title
	}
	if p.Description != nil {
		draft.Description = *p.Description
	}
	if p.DueDate != nil {
		draft.DueDate = *p.DueDate
	}
	if p.Priority != nil {
		draft.Priority = *p.Priority
	}
	if err := s.board.AddTask(r.Context(), l.ID, draft); err != nil {
		writeBoardError(w, err)
		return
	}
	updated, _ := s.board.List(l.ID)
	writeJSON(w, http.StatusCreated, toListJSON(updated))
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	listID, taskID := r.PathValue("listID"), r.PathValue("taskID")
	var body taskBody
	if !decodeBody(w, r, &body) {
		return
	}
	p, err := body.patch()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.board.UpdateTask(r.Context(), listID, taskID, p); err != nil {
		writeBoardError(w, err)
		return
	}
	task, ok := s.board.Task(listID, taskID)
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, toTaskJSON(task))
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.board.DeleteTask(r.Context(), r.PathValue("listID"), r.PathValue("taskID")); err != nil {
		writeBoardError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) dragState() dragJSON {
	out := dragJSON{State: s.board.DragState().String()}
	if dt, ok := s.board.Dragged(); ok {
		t := toTaskJSON(dt.Task)
		out.Task = &t
		out.FromListID = dt.FromListID
	}
	return out
}

func (s *Server) handleGetDrag(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dragState())
}

func (s *Server) handleStartDrag(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ListID string `json:"list_id"`
		TaskID string `json:"task_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	task, ok := s.board.Task(body.ListID, body.TaskID)
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	s.board.StartDrag(task, body.ListID)
	writeJSON(w, http.StatusOK, s.dragState())
}

func (s *Server) handleCancelDrag(w http.ResponseWriter, r *http.Request) {
	s.board.CancelDrag()
	w.WriteHeader(http.StatusNoContent)
}

// handleDrop drops the dragged task on a task when task_id is set,
// otherwise on the list.
func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ListID string `json:"list_id"`
		TaskID string `json:"task_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if _, ok := s.board.List(body.ListID); !ok {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}

	var (
		res board.DropResult
		err error
	)
	if body.TaskID != "" {
		res, err = s.board.DropOnTask(r.Context(), body.ListID, body.TaskID)
	} else {
		res, err = s.board.DropOnList(r.Context(), body.ListID)
	}

	out := dropJSON{Outcome: string(res.Outcome), Task: toTaskJSON(res.Task)}
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, out)
	case errors.Is(err, board.ErrRejected):
		writeBoardError(w, err)
	default:
		out.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, out)
	}
}
