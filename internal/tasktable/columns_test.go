package tasktable_test

import (
	"strings"
	"testing"
	"time"

	"teamsync/internal/service"
	"teamsync/internal/tasktable"
)

func headers(cols []tasktable.Column) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, c.Header)
	}
	return out
}

func TestColumns_ProjectScope(t *testing.T) {
	all := strings.Join(headers(tasktable.Columns("")), ",")
	if all != "#,Done,Title,Project,Assigned To,Due Date,Status,Priority" {
		t.Errorf("unexpected columns %q", all)
	}

	scoped := strings.Join(headers(tasktable.Columns("p1")), ",")
	if scoped != "#,Done,Title,Assigned To,Due Date,Status,Priority" {
		t.Errorf("unexpected scoped columns %q", scoped)
	}
}

func TestCells(t *testing.T) {
	due := time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC)
	task := service.Task{
		ID:         "t1",
		TaskCode:   "task-7",
		Title:      "Ship\nit",
		Priority:   service.PriorityHigh,
		Status:     service.StatusInProgress,
		AssignedTo: &service.Assignee{ID: "u1", Name: "Ada Lovelace"},
		DueDate:    &due,
		Project:    &service.ProjectRef{ID: "p1", Emoji: "📘", Name: "Docs"},
	}

	got := make(map[string]string)
	for _, c := range tasktable.Columns("") {
		got[c.ID] = c.Cell(3, task)
	}

	want := map[string]string{
		"row":        "3",
		"completed":  "[ ]",
		"title":      "[task-7] Ship it",
		"project":    "📘 Docs",
		"assignedTo": "(AL) Ada Lovelace",
		"dueDate":    "October 22nd, 2026",
		"status":     "In Progress",
		"priority":   "High",
	}
	for id, w := range want {
		if got[id] != w {
			t.Errorf("column %s: expected %q, got %q", id, w, got[id])
		}
	}
}

func TestCells_EmptyOptionals(t *testing.T) {
	task := service.Task{ID: "t1", Title: "  ", Status: service.StatusDone}

	if got := tasktable.Checkbox(task); got != "[x]" {
		t.Errorf("Checkbox: got %q", got)
	}
	if got := tasktable.Title(task); got != "(untitled)" {
		t.Errorf("Title: got %q", got)
	}
	if got := tasktable.Project(task); got != "" {
		t.Errorf("Project: got %q", got)
	}
	if got := tasktable.Assignee(task); got != "" {
		t.Errorf("Assignee: got %q", got)
	}
	if got := tasktable.DueDate(task); got != "" {
		t.Errorf("DueDate: got %q", got)
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Ada Lovelace", "AL"},
		{"ada", "A"},
		{"Grace Brewster Hopper", "GB"},
		{"  ", "NA"},
		{"émile zola", "ÉZ"},
	}
	for _, tt := range tests {
		if got := tasktable.Initials(tt.name); got != tt.want {
			t.Errorf("Initials(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		day  int
		want string
	}{
		{1, "January 1st, 2026"},
		{2, "January 2nd, 2026"},
		{3, "January 3rd, 2026"},
		{11, "January 11th, 2026"},
		{23, "January 23rd, 2026"},
	}
	for _, tt := range tests {
		d := time.Date(2026, 1, tt.day, 12, 0, 0, 0, time.UTC)
		if got := tasktable.FormatDate(d); got != tt.want {
			t.Errorf("FormatDate(%v) = %q, want %q", d, got, tt.want)
		}
	}
}
