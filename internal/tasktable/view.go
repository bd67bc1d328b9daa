package tasktable

import (
	"context"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.uber.org/zap"

	"teamsync/internal/output"
	"teamsync/internal/query"
	"teamsync/internal/service"
)

const (
	// StaleTime is how long a task listing is served from the cache.
	StaleTime = time.Minute

	// PageSize is the number of tasks requested per listing.
	PageSize = 100
)

// View loads and renders the task table for one workspace, optionally scoped
// to a project.
type View struct {
	Service     service.Service
	Cache       *query.Client
	WorkspaceID string
	ProjectID   string
	Color       bool
	Logger      *zap.Logger

	// RetryDelay overrides the listing retry wait (for testing).
	RetryDelay func(attempt int) time.Duration
}

// Key is the cache key of the listing. It sits under the workspace's
// all-tasks key, so task mutations invalidate it.
func (v *View) Key() query.Key {
	key := query.AllTasksKey(v.WorkspaceID)
	if v.ProjectID != "" {
		key = append(key, v.ProjectID)
	}
	return key
}

// Tasks returns the listing, served from the cache while fresh.
func (v *View) Tasks(ctx context.Context) ([]service.Task, error) {
	opts := query.Options{
		StaleTime:  StaleTime,
		Retry:      1,
		RetryDelay: v.RetryDelay,
		Enabled:    v.WorkspaceID != "",
	}
	return query.Fetch(ctx, v.Cache, v.Key(), opts, func(ctx context.Context) ([]service.Task, error) {
		return v.Service.ListTasks(ctx, v.WorkspaceID, service.TaskFilter{ProjectID: v.ProjectID, PageSize: PageSize})
	})
}

// Watch runs fn whenever the listing is invalidated. The returned function
// stops watching.
func (v *View) Watch(fn func()) func() {
	return v.Cache.Subscribe(v.Key(), fn)
}

// Toggle returns a completion toggle scoped like the view.
func (v *View) Toggle(n output.Notifier) *CompletionToggle {
	return &CompletionToggle{
		Service:     v.Service,
		Cache:       v.Cache,
		Notifier:    n,
		WorkspaceID: v.WorkspaceID,
		ProjectID:   v.ProjectID,
		Logger:      v.Logger,
	}
}

// Render writes tasks as a table to w.
func (v *View) Render(w io.Writer, tasks []service.Task) {
	if len(tasks) == 0 {
		io.WriteString(w, "No tasks found.\n")
		return
	}

	cols := Columns(v.ProjectID)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, 0, len(cols))
	for _, c := range cols {
		header = append(header, c.Header)
	}
	t.AppendHeader(header)

	for i, task := range tasks {
		row := make(table.Row, 0, len(cols))
		for _, c := range cols {
			cell := c.Cell(i+1, task)
			if v.Color && c.ID == "status" {
				cell = statusColors(task.Status).Sprint(cell)
			}
			row = append(row, cell)
		}
		t.AppendRow(row)
	}
	t.Render()
}

func statusColors(s service.Status) text.Colors {
	switch s {
	case service.StatusBacklog:
		return text.Colors{text.FgHiBlack}
	case service.StatusTodo:
		return text.Colors{text.FgHiBlue}
	case service.StatusInProgress:
		return text.Colors{text.FgHiYellow}
	case service.StatusInReview:
		return text.Colors{text.FgHiMagenta}
	case service.StatusDone:
		return text.Colors{text.FgHiGreen}
	}
	return nil
}
