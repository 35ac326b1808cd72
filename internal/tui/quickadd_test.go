package tui

import (
	"testing"

	"todoboard/internal/board"
	"todoboard/internal/service"
)

func TestParseQuickAdd(t *testing.T) {
	tests := []struct {
		name string
		line string
		want board.TaskDraft
	}{
		{
			name: "title only",
			line: "  Buy milk ",
			want: board.TaskDraft{Title: "Buy milk", Priority: service.PriorityLow},
		},
		{
			name: "all fields",
			line: "File taxes !high @2026-04-15 -- bring receipts",
			want: board.TaskDraft{Title: "File taxes", Priority: service.PriorityHigh, DueDate: "2026-04-15", Description: "bring receipts"},
		},
		{
			name: "markers anywhere",
			line: "!m Water @today plants",
			want: board.TaskDraft{Title: "Water plants", Priority: service.PriorityMedium, DueDate: "2026-03-01"},
		},
		{
			name: "description keeps dashes",
			line: "Deploy -- step 1 -- step 2",
			want: board.TaskDraft{Title: "Deploy", Priority: service.PriorityLow, Description: "step 1 -- step 2"},
		},
		{
			name: "lone markers are words",
			line: "Say ! and @",
			want: board.TaskDraft{Title: "Say ! and @", Priority: service.PriorityLow},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuickAdd(tt.line, testNow)
			if err != nil {
				t.Fatalf("ParseQuickAdd: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseQuickAdd_Errors(t *testing.T) {
	for _, line := range []string{
		"",
		"!high @2026-01-01",
		"Task !urgent",
		"Task @next-week",
		"Task @2026-13-01",
	} {
		if _, err := ParseQuickAdd(line, testNow); err == nil {
			t.Errorf("ParseQuickAdd(%q): expected error", line)
		}
	}
}

func TestFormatQuickAdd(t *testing.T) {
	d := board.TaskDraft{Title: "File taxes", Priority: service.PriorityHigh, DueDate: "2026-04-15", Description: "receipts"}
	line := FormatQuickAdd(d)
	if line != "File taxes !high @2026-04-15 -- receipts" {
		t.Errorf("FormatQuickAdd = %q", line)
	}
	back, err := ParseQuickAdd(line, testNow)
	if err != nil || back != d {
		t.Errorf("reparse = %+v, %v", back, err)
	}
	if got := FormatQuickAdd(board.EmptyDraft()); got != "" {
		t.Errorf("empty draft = %q", got)
	}
}
