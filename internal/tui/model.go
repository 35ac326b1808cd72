// Package tui is the interactive terminal board: one column per list,
// keyboard drag-and-drop between and within lists, and quick task entry.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todoboard/internal/board"
	"todoboard/internal/output"
	"todoboard/internal/service"
)

type inputMode int

const (
	modeBrowse inputMode = iota
	modeNewList
	modeNewTask
)

const helpLine = "←/→ list  ↑/↓ task  space grab/drop  esc cancel  a add task  n new list  r refresh  L sign out  q quit"

// Option configures the board model.
type Option func(*Model)

// WithClock sets the time source used for due dates.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// Model is the bubbletea model of the board.
type Model struct {
	ctx   context.Context
	board *board.Board
	now   func() time.Time

	lists []service.TaskList
	col   int
	row   int

	mode   inputMode
	input  textinput.Model
	status string
	err    error

	width    int
	quitting bool
}

// opDoneMsg reports a finished board operation.
type opDoneMsg struct {
	status string
	err    error
	// focusTaskID moves the cursor to this task when it is on the board.
	focusTaskID string
}

// New creates a model over b. The board should already be started.
func New(ctx context.Context, b *board.Board, opts ...Option) *Model {
	input := textinput.New()
	input.CharLimit = 200
	input.Width = 60

	m := &Model{
		ctx:   ctx,
		board: b,
		now:   time.Now,
		input: input,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.reload()
	return m
}

// Run shows the board until the user quits or ctx is cancelled.
func Run(ctx context.Context, b *board.Board, opts ...Option) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("board requires a terminal")
	}
	program := tea.NewProgram(New(ctx, b, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case opDoneMsg:
		m.status, m.err = msg.status, msg.err
		m.reload()
		if msg.focusTaskID != "" {
			m.focus(msg.focusTaskID)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "left", "h":
		m.moveColumn(-1)
	case "right", "l":
		m.moveColumn(1)
	case "up", "k":
		m.moveRow(-1)
	case "down", "j":
		m.moveRow(1)
	case " ", "space":
		return m, m.grabOrDrop()
	case "esc":
		if _, ok := m.board.Dragged(); ok {
			m.board.CancelDrag()
			m.setStatus("drag cancelled")
		}
	case "n":
		if !m.signedIn() {
			break
		}
		return m, m.openInput(modeNewList, "list name", "")
	case "a":
		list, ok := m.currentList()
		if !ok || !m.signedIn() {
			break
		}
		return m, m.openInput(modeNewTask, "title !high @2026-01-31 -- notes", FormatQuickAdd(m.board.Draft(list.ID)))
	case "r":
		return m, m.refresh()
	case "L":
		return m, m.signOut()
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return m, nil
	case "enter":
		value := m.input.Value()
		mode := m.mode
		m.closeInput()
		if mode == modeNewList {
			return m, m.createList(value)
		}
		return m, m.addTask(value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) openInput(mode inputMode, placeholder, value string) tea.Cmd {
	m.mode = mode
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) closeInput() {
	m.mode = modeBrowse
	m.input.Blur()
	m.input.Reset()
}

// grabOrDrop starts a drag on the task under the cursor, or drops the
// dragged task on the cursor position: on the task when there is one,
// otherwise on the list.
func (m *Model) grabOrDrop() tea.Cmd {
	list, ok := m.currentList()
	if !ok {
		return nil
	}
	if _, dragging := m.board.Dragged(); !dragging {
		task, ok := m.currentTask()
		if !ok {
			return nil
		}
		m.board.StartDrag(task, list.ID)
		m.setStatus(fmt.Sprintf("moving %q (space to drop, esc to cancel)", task.Title))
		return nil
	}

	target, onTask := m.currentTask()
	b, ctx := m.board, m.ctx
	return func() tea.Msg {
		var (
			res board.DropResult
			err error
		)
		if onTask {
			res, err = b.DropOnTask(ctx, list.ID, target.ID)
		} else {
			res, err = b.DropOnList(ctx, list.ID)
		}
		return opDoneMsg{status: dropStatus(res), err: err, focusTaskID: res.Task.ID}
	}
}

func dropStatus(res board.DropResult) string {
	switch res.Outcome {
	case board.OutcomeMoved:
		return fmt.Sprintf("moved %q", res.Task.Title)
	case board.OutcomeReordered:
		return fmt.Sprintf("reordered %q", res.Task.Title)
	case board.OutcomePartialMove:
		return fmt.Sprintf("%q copied but not removed from its list", res.Task.Title)
	default:
		return "nothing to do"
	}
}

func (m *Model) createList(name string) tea.Cmd {
	b, ctx := m.board, m.ctx
	return func() tea.Msg {
		if err := b.CreateList(ctx, name); err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{status: fmt.Sprintf("created list %q", strings.TrimSpace(name))}
	}
}

// addTask stores the parsed line as the current list's draft and submits
// it. A failed submit keeps the draft for the next attempt.
func (m *Model) addTask(line string) tea.Cmd {
	list, ok := m.currentList()
	if !ok {
		return nil
	}
	draft, err := ParseQuickAdd(line, m.now())
	if err != nil {
		m.err = err
		return nil
	}
	m.board.UpdateDraft(list.ID, board.DraftTitle, draft.Title)
	m.board.UpdateDraft(list.ID, board.DraftDescription, draft.Description)
	m.board.UpdateDraft(list.ID, board.DraftDueDate, draft.DueDate)
	m.board.UpdateDraft(list.ID, board.DraftPriority, string(draft.Priority))

	b, ctx := m.board, m.ctx
	return func() tea.Msg {
		if err := b.SubmitTask(ctx, list.ID); err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{status: fmt.Sprintf("added %q to %s", draft.Title, list.Name)}
	}
}

func (m *Model) refresh() tea.Cmd {
	b, ctx := m.board, m.ctx
	return func() tea.Msg {
		if err := b.Refresh(ctx); err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{status: "refreshed"}
	}
}

func (m *Model) signOut() tea.Cmd {
	b, ctx := m.board, m.ctx
	return func() tea.Msg {
		if err := b.SignOut(ctx); err != nil {
			return opDoneMsg{err: err}
		}
		return opDoneMsg{status: "signed out"}
	}
}

func (m *Model) setStatus(s string) {
	m.status, m.err = s, nil
}

func (m *Model) signedIn() bool {
	_, ok := m.board.User()
	return ok
}

// reload copies the board's lists and keeps the cursor in range.
func (m *Model) reload() {
	m.lists = m.board.Lists()
	m.clamp()
}

func (m *Model) clamp() {
	if m.col >= len(m.lists) {
		m.col = len(m.lists) - 1
	}
	if m.col < 0 {
		m.col = 0
	}
	n := 0
	if list, ok := m.currentList(); ok {
		n = len(list.Tasks)
	}
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m *Model) focus(taskID string) {
	for c, list := range m.lists {
		for r, task := range list.Tasks {
			if task.ID == taskID {
				m.col, m.row = c, r
				return
			}
		}
	}
}

func (m *Model) moveColumn(delta int) {
	m.col += delta
	m.clamp()
}

func (m *Model) moveRow(delta int) {
	m.row += delta
	m.clamp()
}

func (m *Model) currentList() (service.TaskList, bool) {
	if m.col < 0 || m.col >= len(m.lists) {
		return service.TaskList{}, false
	}
	return m.lists[m.col], true
}

func (m *Model) currentTask() (service.Task, bool) {
	list, ok := m.currentList()
	if !ok || m.row < 0 || m.row >= len(list.Tasks) {
		return service.Task{}, false
	}
	return list.Tasks[m.row], true
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	if user, ok := m.board.User(); ok {
		b.WriteString(headerStyle.Render("todoboard") + dimStyle.Render("  "+user.ID) + "\n\n")
	} else {
		b.WriteString(headerStyle.Render("todoboard") + dimStyle.Render("  not logged in (run: todoboard login)") + "\n\n")
	}

	if len(m.lists) == 0 {
		b.WriteString(dimStyle.Render("no lists (n to create one)") + "\n")
	} else {
		columns := make([]string, 0, len(m.lists))
		for i, list := range m.lists {
			columns = append(columns, m.renderColumn(i, list))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...) + "\n")
	}

	b.WriteString("\n")
	switch m.mode {
	case modeNewList:
		b.WriteString("new list: " + m.input.View() + "\n")
	case modeNewTask:
		list, _ := m.currentList()
		b.WriteString("add to " + list.Name + ": " + m.input.View() + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render("error: "+errorText(m.err)) + "\n")
	} else if m.status != "" {
		b.WriteString(m.status + "\n")
	}
	b.WriteString(dimStyle.Render(helpLine))
	return b.String()
}

func (m *Model) renderColumn(idx int, list service.TaskList) string {
	dragged, dragging := m.board.Dragged()
	now := m.now()

	var b strings.Builder
	letter := output.Letter(idx)
	label := "-"
	if letter != 0 {
		label = string(letter)
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s  %s (%d)", label, list.Name, len(list.Tasks))))
	if len(list.Tasks) == 0 {
		b.WriteString("\n" + dimStyle.Render("empty"))
	}
	for r, task := range list.Tasks {
		line := fmt.Sprintf("%s %d %s", priorityMark(task.Priority), r+1, task.Title)
		if task.DueDate != "" {
			line += dimStyle.Render(" (" + output.RelativeDue(task.DueDate, now) + ")")
		}
		switch {
		case idx == m.col && r == m.row:
			line = cursorStyle.Render(line)
		case dragging && dragged.FromListID == list.ID && dragged.Task.ID == task.ID:
			line = draggedStyle.Render(line)
		}
		b.WriteString("\n" + line)
	}

	style := columnStyle
	if idx == m.col {
		style = activeColumnStyle
	}
	return style.Render(b.String())
}

func errorText(err error) string {
	switch {
	case errors.Is(err, board.ErrRejected):
		return "empty name or title, or not logged in"
	case errors.Is(err, board.ErrPartialMove):
		return "task copied but not removed from its list"
	}
	return err.Error()
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
