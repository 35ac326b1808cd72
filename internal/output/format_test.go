package output

import (
	"bytes"
	"testing"
	"time"

	"todoboard/internal/service"
	"todoboard/internal/testutil"
)

var testNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func TestFormatBoard_Golden(t *testing.T) {
	lists := []service.TaskList{
		{ID: "l1", Name: "Groceries", Tasks: []service.Task{
			{ID: "t1", Title: "Milk", Priority: service.PriorityHigh, DueDate: "2026-03-03"},
			{ID: "t2", Title: "Bread", Priority: service.PriorityLow},
		}},
		{ID: "l2", Name: "Errands", Tasks: []service.Task{
			{ID: "t3", Title: "Post office", Priority: service.PriorityMedium, DueDate: "2026-02-28"},
			{ID: "t4", Title: " \n", DueDate: "2026-03-01"},
		}},
	}

	var buf bytes.Buffer
	for i, l := range lists {
		FormatListHeader(&buf, Letter(i), l.Name)
		for j, task := range l.Tasks {
			FormatTaskIndented(&buf, j+1, task, testNow)
		}
	}
	testutil.Golden(t, "board", buf.Bytes())
}

func TestFormatListName(t *testing.T) {
	var buf bytes.Buffer
	FormatListName(&buf, 'c', service.TaskList{Name: "Work", Tasks: make([]service.Task, 3)})
	FormatListName(&buf, 0, service.TaskList{Name: ""})

	want := "c  Work (3)\n-  (untitled) (0)\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestRelativeDue(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2026-03-01", "today"},
		{"2026-03-02", "1 day from now"},
		{"2026-02-27", "2 days ago"},
		{"someday", "someday"},
	}
	for _, tt := range tests {
		if got := RelativeDue(tt.date, testNow); got != tt.want {
			t.Errorf("RelativeDue(%q) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestLetter(t *testing.T) {
	if Letter(0) != 'a' || Letter(25) != 'z' {
		t.Errorf("unexpected letters %c %c", Letter(0), Letter(25))
	}
	if Letter(26) != 0 {
		t.Errorf("expected no letter past z")
	}
}

func TestFormatTaskDetail(t *testing.T) {
	var buf bytes.Buffer
	FormatTaskDetail(&buf, service.Task{
		Title:       "Milk",
		Description: "oat",
		DueDate:     "2026-03-02",
	}, testNow)

	want := "title:       Milk\npriority:    low\ndue:         2026-03-02 (1 day from now)\ndescription: oat\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
