package service

import "context"

// Service defines the interface for TeamSync API operations.
// Commands, forms and tables never talk HTTP directly.
type Service interface {
	// CurrentUser returns the profile of the authenticated user.
	CurrentUser(ctx context.Context) (User, error)

	// ListTasks returns the tasks of a workspace, in API order.
	ListTasks(ctx context.Context, workspaceID string, filter TaskFilter) ([]Task, error)

	// UpdateTask applies a partial update and returns the server message.
	UpdateTask(ctx context.Context, in UpdateTaskInput) (string, error)

	// ListMembers returns the members of a workspace.
	ListMembers(ctx context.Context, workspaceID string) ([]Member, error)
}
