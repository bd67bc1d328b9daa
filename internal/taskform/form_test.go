package taskform_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"teamsync/internal/service"
	"teamsync/internal/taskform"
)

func validValues() taskform.Values {
	return taskform.Values{
		Title:      "Write release notes",
		Priority:   service.PriorityMedium,
		Status:     service.StatusTodo,
		AssignedTo: taskform.Unassigned,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(v *taskform.Values)
		wantMsg string
	}{
		{"valid", func(v *taskform.Values) {}, ""},
		{"empty title", func(v *taskform.Values) { v.Title = "" }, "Title is required"},
		{"title too long", func(v *taskform.Values) { v.Title = strings.Repeat("x", 256) }, "Title is too long"},
		{"title at limit", func(v *taskform.Values) { v.Title = strings.Repeat("é", 255) }, ""},
		{"missing priority", func(v *taskform.Values) { v.Priority = "" }, "Priority is required"},
		{"unknown priority", func(v *taskform.Values) { v.Priority = "URGENT" }, "Invalid priority"},
		{"unknown status", func(v *taskform.Values) { v.Status = "ARCHIVED" }, "Invalid status"},
		{"description optional", func(v *taskform.Values) { v.Description = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validValues()
			tt.mutate(&v)
			err := v.Validate()

			if tt.wantMsg == "" {
				if err != nil {
					t.Errorf("expected valid, got %v", err)
				}
				return
			}

			var verr *taskform.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected message containing %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	task := service.Task{
		ID:         "t1",
		Title:      "Title",
		Priority:   service.PriorityHigh,
		Status:     service.StatusInReview,
		AssignedTo: &service.Assignee{ID: "u1", Name: "Ada"},
		DueDate:    &due,
	}

	v := taskform.Defaults(task)
	if v.AssignedTo != "u1" {
		t.Errorf("expected assignee u1, got %q", v.AssignedTo)
	}
	if v.DueDate == nil || !v.DueDate.Equal(due) {
		t.Errorf("expected due date %v, got %v", due, v.DueDate)
	}

	task.AssignedTo = nil
	if v := taskform.Defaults(task); v.AssignedTo != taskform.Unassigned {
		t.Errorf("expected unassigned sentinel, got %q", v.AssignedTo)
	}
}

func TestUpdate_UnassignedOmitsAssignee(t *testing.T) {
	v := validValues()
	v.AssignedTo = taskform.Unassigned

	data, err := json.Marshal(v.Update())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := body["assignedTo"]; ok {
		t.Errorf("expected no assignedTo field, got %s", data)
	}
	if body["description"] != "" {
		t.Errorf("expected empty description to be sent, got %v", body["description"])
	}
	if _, ok := body["dueDate"]; ok {
		t.Errorf("expected no dueDate field, got %s", data)
	}
}

func TestUpdate_AssigneeAndDueDate(t *testing.T) {
	v := validValues()
	v.AssignedTo = "u2"
	due := time.Date(2026, 10, 20, 9, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	v.DueDate = &due

	u := v.Update()
	if u.AssignedTo == nil || *u.AssignedTo != "u2" {
		t.Errorf("expected assignee u2, got %v", u.AssignedTo)
	}
	if u.DueDate == nil || *u.DueDate != "2026-10-20T07:30:00.000Z" {
		t.Errorf("expected ISO UTC date, got %v", u.DueDate)
	}
}

func TestPickDueDate(t *testing.T) {
	now := time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		date    time.Time
		wantErr bool
	}{
		{"earlier today", time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), false},
		{"tomorrow", time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), false},
		{"yesterday", time.Date(2026, 10, 17, 23, 59, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validValues()
			err := v.PickDueDate(tt.date, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if tt.wantErr && v.DueDate != nil {
				t.Error("rejected date should not be set")
			}
			if !tt.wantErr && (v.DueDate == nil || !v.DueDate.Equal(tt.date)) {
				t.Errorf("expected due date %v, got %v", tt.date, v.DueDate)
			}
		})
	}
}

func TestResolveAssignee(t *testing.T) {
	members := []service.Member{
		{ID: "u1", Name: "Ada Lovelace"},
		{ID: "u2", Name: "Linus"},
		{ID: "u3", Name: "linus"},
	}

	tests := []struct {
		input   string
		want    string
		wantErr string
	}{
		{"", taskform.Unassigned, ""},
		{"unassigned", taskform.Unassigned, ""},
		{"Unassigned", taskform.Unassigned, ""},
		{"u1", "u1", ""},
		{"ada lovelace", "u1", ""},
		{"LINUS", "", "ambiguous"},
		{"Grace", "", "not found"},
	}

	for _, tt := range tests {
		got, err := taskform.ResolveAssignee(members, tt.input)
		if tt.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ResolveAssignee(%q): expected error containing %q, got %v", tt.input, tt.wantErr, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ResolveAssignee(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}
