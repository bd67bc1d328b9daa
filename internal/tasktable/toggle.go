package tasktable

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"teamsync/internal/output"
	"teamsync/internal/query"
	"teamsync/internal/service"
)

// ErrTogglePending is returned while a toggle for the same task is in flight.
var ErrTogglePending = errors.New("task status update already in progress")

// CompletionToggle marks tasks done or not done.
type CompletionToggle struct {
	Service     service.Service
	Cache       *query.Client
	Notifier    output.Notifier
	WorkspaceID string

	// ProjectID is the table scope, used for tasks without a project.
	ProjectID string
	Logger    *zap.Logger

	mu      sync.Mutex
	pending map[string]bool
}

// IsPending reports whether a toggle for taskID is in flight.
func (c *CompletionToggle) IsPending(taskID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[taskID]
}

// Toggle sets the task status to DONE when checked and TODO otherwise.
func (c *CompletionToggle) Toggle(ctx context.Context, task service.Task, checked bool) error {
	status := service.StatusTodo
	if checked {
		status = service.StatusDone
	}

	projectID := task.ProjectID()
	if projectID == "" {
		projectID = c.ProjectID
	}
	if projectID == "" {
		c.notify(output.Error(service.ErrProjectNotFound.Error()))
		return service.ErrProjectNotFound
	}

	if !c.begin(task.ID) {
		return ErrTogglePending
	}
	defer c.end(task.ID)

	in := service.UpdateTaskInput{
		WorkspaceID: c.WorkspaceID,
		ProjectID:   projectID,
		TaskID:      task.ID,
		Data:        service.TaskUpdate{Status: &status},
	}
	c.logger().Debug("updating task status",
		zap.String("task", task.ID),
		zap.String("project", projectID),
		zap.String("status", string(status)))

	if _, err := c.Service.UpdateTask(ctx, in); err != nil {
		c.notify(output.Error(output.ErrorMessage(err, "Failed to update task")))
		return err
	}

	c.Cache.Invalidate(query.AllTasksKey(c.WorkspaceID))
	c.notify(output.Success("Task status updated successfully"))
	return nil
}

func (c *CompletionToggle) begin(taskID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		c.pending = make(map[string]bool)
	}
	if c.pending[taskID] {
		return false
	}
	c.pending[taskID] = true
	return true
}

func (c *CompletionToggle) end(taskID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, taskID)
}

func (c *CompletionToggle) notify(n output.Notice) {
	if c.Notifier != nil {
		c.Notifier.Notify(n)
	}
}

func (c *CompletionToggle) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
