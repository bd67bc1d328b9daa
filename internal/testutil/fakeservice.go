// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"teamsync/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu      sync.RWMutex
	user    service.User
	tasks   map[string][]service.Task   // workspaceID -> tasks
	members map[string][]service.Member // workspaceID -> members

	updates []service.UpdateTaskInput

	currentUserCalls int
	listTasksCalls   int
	listMembersCalls int

	// Error injection for testing
	CurrentUserErr error
	ListTasksErr   error
	UpdateTaskErr  error
	ListMembersErr error

	// CurrentUserFailures makes the first n CurrentUser calls fail with CurrentUserErr.
	CurrentUserFailures int

	// UpdateGate, when set, blocks UpdateTask until it is closed or receives.
	UpdateGate chan struct{}

	// UpdateMessage is returned by a successful UpdateTask.
	UpdateMessage string
}

// NewFakeService creates an empty FakeService with a signed-in user.
func NewFakeService() *FakeService {
	return &FakeService{
		user:          service.User{ID: "user-1", Name: "Test User", Email: "test@example.com"},
		tasks:         make(map[string][]service.Task),
		members:       make(map[string][]service.Member),
		UpdateMessage: "Task updated successfully",
	}
}

// SetUser sets the profile returned by CurrentUser.
func (f *FakeService) SetUser(u service.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = u
}

// AddTask adds a task to a workspace.
func (f *FakeService) AddTask(workspaceID string, task service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[workspaceID] = append(f.tasks[workspaceID], task)
}

// AddMember adds a member to a workspace.
func (f *FakeService) AddMember(workspaceID, id, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[workspaceID] = append(f.members[workspaceID], service.Member{ID: id, Name: name})
}

// Task returns the stored task by id.
func (f *FakeService) Task(workspaceID, taskID string) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks[workspaceID] {
		if t.ID == taskID {
			return t, true
		}
	}
	return service.Task{}, false
}

// Updates returns every UpdateTask input received, in order.
func (f *FakeService) Updates() []service.UpdateTaskInput {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.UpdateTaskInput, len(f.updates))
	copy(out, f.updates)
	return out
}

// CurrentUserCalls returns how many times CurrentUser was called.
func (f *FakeService) CurrentUserCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.currentUserCalls
}

// ListTasksCalls returns how many times ListTasks was called.
func (f *FakeService) ListTasksCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.listTasksCalls
}

// ListMembersCalls returns how many times ListMembers was called.
func (f *FakeService) ListMembersCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.listMembersCalls
}

// CurrentUser implements service.Service.
func (f *FakeService) CurrentUser(ctx context.Context) (service.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentUserCalls++
	if f.CurrentUserErr != nil && (f.CurrentUserFailures == 0 || f.currentUserCalls <= f.CurrentUserFailures) {
		return service.User{}, f.CurrentUserErr
	}
	return f.user, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, workspaceID string, filter service.TaskFilter) ([]service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listTasksCalls++
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}

	var result []service.Task
	for _, t := range f.tasks[workspaceID] {
		if filter.ProjectID != "" && t.ProjectID() != filter.ProjectID {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, in service.UpdateTaskInput) (string, error) {
	if f.UpdateGate != nil {
		select {
		case <-f.UpdateGate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, in)
	if f.UpdateTaskErr != nil {
		return "", f.UpdateTaskErr
	}

	tasks := f.tasks[in.WorkspaceID]
	for i, t := range tasks {
		if t.ID != in.TaskID {
			continue
		}
		tasks[i] = applyUpdate(t, in.Data)
		return f.UpdateMessage, nil
	}
	return "", ErrNotFound
}

// ListMembers implements service.Service.
func (f *FakeService) ListMembers(ctx context.Context, workspaceID string) ([]service.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listMembersCalls++
	if f.ListMembersErr != nil {
		return nil, f.ListMembersErr
	}
	out := make([]service.Member, len(f.members[workspaceID]))
	copy(out, f.members[workspaceID])
	return out, nil
}

func applyUpdate(t service.Task, d service.TaskUpdate) service.Task {
	if d.Title != nil {
		t.Title = *d.Title
	}
	if d.Description != nil {
		t.Description = *d.Description
	}
	if d.Priority != nil {
		t.Priority = *d.Priority
	}
	if d.Status != nil {
		t.Status = *d.Status
	}
	if d.AssignedTo != nil {
		t.AssignedTo = &service.Assignee{ID: *d.AssignedTo}
	}
	if d.DueDate != nil {
		if due, err := time.Parse(time.RFC3339, *d.DueDate); err == nil {
			t.DueDate = &due
		}
	}
	return t
}

var _ service.Service = (*FakeService)(nil)
