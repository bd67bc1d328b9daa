// Package service defines the backend-agnostic interface for TeamSync operations.
package service

import (
	"errors"
	"time"
)

// Priority is a task priority.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Status is a task status.
type Status string

const (
	StatusBacklog    Status = "BACKLOG"
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusInReview   Status = "IN_REVIEW"
	StatusDone       Status = "DONE"
)

// ErrProjectNotFound is returned when a task mutation has no project to address.
var ErrProjectNotFound = errors.New("Project ID not found for this task")

// Label returns the human label, e.g. "Medium".
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	}
	return string(p)
}

// Label returns the human label, e.g. "In Progress".
func (s Status) Label() string {
	switch s {
	case StatusBacklog:
		return "Backlog"
	case StatusTodo:
		return "Todo"
	case StatusInProgress:
		return "In Progress"
	case StatusInReview:
		return "In Review"
	case StatusDone:
		return "Done"
	}
	return string(s)
}

// User is the authenticated user's profile.
type User struct {
	ID               string `json:"_id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	ProfilePicture   string `json:"profilePicture,omitempty"`
	CurrentWorkspace string `json:"currentWorkspace,omitempty"`
}

// Member is a workspace member available for assignment.
type Member struct {
	ID   string
	Name string
}

// Assignee is the user a task is assigned to.
type Assignee struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// ProjectRef is the project a task belongs to.
type ProjectRef struct {
	ID    string `json:"_id"`
	Emoji string `json:"emoji,omitempty"`
	Name  string `json:"name"`
}

// Task represents a single task item.
type Task struct {
	ID          string      `json:"_id"`
	TaskCode    string      `json:"taskCode"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Priority    Priority    `json:"priority"`
	Status      Status      `json:"status"`
	AssignedTo  *Assignee   `json:"assignedTo,omitempty"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
	Project     *ProjectRef `json:"project,omitempty"`
}

// ProjectID returns the task's project id, or "" when the task has none.
func (t Task) ProjectID() string {
	if t.Project == nil {
		return ""
	}
	return t.Project.ID
}

// IsCompleted reports whether the task is done.
func (t Task) IsCompleted() bool {
	return t.Status == StatusDone
}

// TaskUpdate is a partial task update. Nil fields are left out of the request.
type TaskUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	AssignedTo  *string   `json:"assignedTo,omitempty"`
	DueDate     *string   `json:"dueDate,omitempty"`
}

// UpdateTaskInput addresses a task update.
type UpdateTaskInput struct {
	WorkspaceID string
	ProjectID   string
	TaskID      string
	Data        TaskUpdate
}

// TaskFilter narrows a task listing.
type TaskFilter struct {
	ProjectID  string
	PageSize   int
	PageNumber int
}
