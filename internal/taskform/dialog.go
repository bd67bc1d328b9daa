package taskform

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"teamsync/internal/output"
	"teamsync/internal/query"
	"teamsync/internal/service"
)

// MembersRetry is the number of retries for the member list query.
const MembersRetry = 3

// ErrSubmitInFlight is returned when a submission is already running.
var ErrSubmitInFlight = errors.New("task update already in progress")

// Dialog edits one task. It stays open after a failed submission and closes
// after a successful one.
type Dialog struct {
	Service     service.Service
	Cache       *query.Client
	Notifier    output.Notifier
	WorkspaceID string
	Task        service.Task
	Logger      *zap.Logger

	// RetryDelay overrides the member query retry wait (for testing).
	RetryDelay func(attempt int) time.Duration

	mu      sync.Mutex
	open    bool
	pending bool
}

// Open opens the dialog and loads the workspace members for assignment.
func (d *Dialog) Open(ctx context.Context) ([]service.Member, error) {
	d.SetOpen(true)
	return d.Members(ctx)
}

// SetOpen opens or closes the dialog.
func (d *Dialog) SetOpen(open bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = open
}

// IsOpen reports whether the dialog is open.
func (d *Dialog) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// IsPending reports whether a submission is in flight.
func (d *Dialog) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Members fetches the workspace members. The query only runs while the
// dialog is open and a workspace is known.
func (d *Dialog) Members(ctx context.Context) ([]service.Member, error) {
	opts := query.Options{
		Retry:      MembersRetry,
		RetryDelay: d.RetryDelay,
		Enabled:    d.IsOpen() && d.WorkspaceID != "",
	}
	return query.Fetch(ctx, d.Cache, query.MembersKey(d.WorkspaceID), opts, func(ctx context.Context) ([]service.Member, error) {
		return d.Service.ListMembers(ctx, d.WorkspaceID)
	})
}

// Defaults returns the form values for the dialog's task.
func (d *Dialog) Defaults() Values {
	return Defaults(d.Task)
}

// Submit validates v and sends the update. Validation failures return a
// *ValidationError without any request.
func (d *Dialog) Submit(ctx context.Context, v Values) error {
	if err := v.Validate(); err != nil {
		return err
	}

	projectID := d.Task.ProjectID()
	if projectID == "" {
		d.notify(output.Error(service.ErrProjectNotFound.Error()))
		return service.ErrProjectNotFound
	}

	if !d.begin() {
		return ErrSubmitInFlight
	}
	defer d.end()

	in := service.UpdateTaskInput{
		WorkspaceID: d.WorkspaceID,
		ProjectID:   projectID,
		TaskID:      d.Task.ID,
		Data:        v.Update(),
	}
	d.logger().Debug("updating task", zap.String("task", in.TaskID), zap.String("project", in.ProjectID))

	msg, err := d.Service.UpdateTask(ctx, in)
	if err != nil {
		d.notify(output.Error(output.ErrorMessage(err, "Failed to update task")))
		return err
	}

	d.Cache.Invalidate(query.AllTasksKey(d.WorkspaceID))
	if msg == "" {
		msg = "Task updated successfully"
	}
	d.notify(output.Success(msg))
	d.SetOpen(false)
	return nil
}

func (d *Dialog) begin() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending {
		return false
	}
	d.pending = true
	return true
}

func (d *Dialog) end() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = false
}

func (d *Dialog) notify(n output.Notice) {
	if d.Notifier != nil {
		d.Notifier.Notify(n)
	}
}

func (d *Dialog) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
