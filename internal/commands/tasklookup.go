package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"teamsync/internal/service"
	"teamsync/internal/tasktable"
)

// ErrTaskNotFound is returned when a reference matches no listed task.
var ErrTaskNotFound = errors.New("task not found")

// FindTask resolves ref against a task listing. Rows are 1-based; task codes
// match case-insensitively, ids exactly.
func FindTask(tasks []service.Task, ref TaskRef) (service.Task, error) {
	if ref.Row > 0 {
		if ref.Row > len(tasks) {
			return service.Task{}, fmt.Errorf("%w: row %d of %d", ErrTaskNotFound, ref.Row, len(tasks))
		}
		return tasks[ref.Row-1], nil
	}

	for _, t := range tasks {
		if t.ID == ref.Value {
			return t, nil
		}
	}
	for _, t := range tasks {
		if t.TaskCode != "" && strings.EqualFold(t.TaskCode, ref.Value) {
			return t, nil
		}
	}
	return service.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, ref.Value)
}

// scopeFlags selects the workspace and project a task command works on.
type scopeFlags struct {
	project   string
	workspace string

	// list re-renders the listing once a mutation invalidates it.
	list bool
}

func (s *scopeFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.project, "project", "", "")
	fs.StringVar(&s.project, "p", "", "")
	fs.StringVar(&s.workspace, "workspace", "", "")
	fs.StringVar(&s.workspace, "w", "", "")
}

func (s *scopeFlags) registerList(fs *flag.FlagSet) {
	fs.BoolVar(&s.list, "list", false, "")
	fs.BoolVar(&s.list, "l", false, "")
}

// view builds the task table view for the scope.
func (s *scopeFlags) view(env *Env) (*tasktable.View, error) {
	ws, err := resolveWorkspace(env, s.workspace)
	if err != nil {
		return nil, err
	}
	return &tasktable.View{
		Service:     env.Service,
		Cache:       env.Cache,
		WorkspaceID: ws,
		ProjectID:   s.project,
		Color:       env.Config != nil && env.Config.Color,
		Logger:      env.log(),
	}, nil
}

// lookupTask lists the scope's tasks and resolves the reference in args.
func lookupTask(ctx context.Context, view *tasktable.View, args []string) (service.Task, error) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return service.Task{}, err
	}
	tasks, err := view.Tasks(ctx)
	if err != nil {
		return service.Task{}, err
	}
	return FindTask(tasks, ref)
}

// watchListing renders the refreshed listing to out whenever view is
// invalidated, if the scope asked for it. The returned function stops watching.
func watchListing(ctx context.Context, scope *scopeFlags, view *tasktable.View, out io.Writer) func() {
	if !scope.list {
		return func() {}
	}
	return view.Watch(func() {
		tasks, err := view.Tasks(ctx)
		if err != nil {
			return
		}
		view.Render(out, tasks)
	})
}
