package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"teamsync/internal/exitcode"
	"teamsync/internal/service"
	"teamsync/internal/taskform"
)

const dueDateLayout = "2006-01-02"

func init() {
	Register(&EditCmd{})
}

// optionalString is a string flag that records whether it was given.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string {
	if o == nil {
		return ""
	}
	return o.value
}

func (o *optionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	scope       scopeFlags
	title       optionalString
	description optionalString
	priority    optionalString
	status      optionalString
	assignee    optionalString
	due         optionalString

	// now is the clock for due date checks (for testing).
	now func() time.Time
}

// SetClock replaces the clock used to reject past due dates (for testing).
func (c *EditCmd) SetClock(now func() time.Time) {
	c.now = now
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Edit a task" }
func (c *EditCmd) Usage() string {
	return "teamsync edit [--title <t>] [--description <d>] [--priority <p>] [--status <s>] [--assignee <id|name>] [--due <YYYY-MM-DD>] [--list] <ref>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.title, c.description, c.priority = optionalString{}, optionalString{}, optionalString{}
	c.status, c.assignee, c.due = optionalString{}, optionalString{}, optionalString{}

	c.scope.register(fs)
	c.scope.registerList(fs)
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.status, "s", "")
	fs.Var(&c.assignee, "assignee", "")
	fs.Var(&c.assignee, "a", "")
	fs.Var(&c.due, "due", "")
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if !c.title.set && !c.description.set && !c.priority.set && !c.status.set && !c.assignee.set && !c.due.set {
		fmt.Fprintln(errOut, "error: nothing to update")
		return exitcode.UserError
	}

	view, err := c.scope.view(env)
	if err != nil {
		return fail(errOut, err)
	}
	task, err := lookupTask(ctx, view, args)
	if err != nil {
		return fail(errOut, err)
	}

	dialog := &taskform.Dialog{
		Service:     env.Service,
		Cache:       env.Cache,
		Notifier:    env.Notifier,
		WorkspaceID: view.WorkspaceID,
		Task:        task,
		Logger:      env.log(),
	}
	values := dialog.Defaults()

	if c.assignee.set {
		members, err := dialog.Open(ctx)
		if err != nil {
			return fail(errOut, fmt.Errorf("failed to load members: %w", err))
		}
		id, err := taskform.ResolveAssignee(members, c.assignee.value)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		values.AssignedTo = id
	} else {
		dialog.SetOpen(true)
	}

	if c.title.set {
		values.Title = c.title.value
	}
	if c.description.set {
		values.Description = c.description.value
	}
	if c.priority.set {
		values.Priority = service.Priority(normalizeEnum(c.priority.value))
	}
	if c.status.set {
		values.Status = service.Status(normalizeEnum(c.status.value))
	}
	if c.due.set {
		if code := c.applyDueDate(&values, errOut); code != exitcode.Success {
			return code
		}
	}

	stop := watchListing(ctx, &c.scope, view, out)
	defer stop()

	err = dialog.Submit(ctx, values)
	var verr *taskform.ValidationError
	switch {
	case err == nil:
		return exitcode.Success
	case errors.As(err, &verr):
		return fail(errOut, err)
	default:
		// Already reported by the notifier.
		return exitCodeFor(err)
	}
}

func (c *EditCmd) applyDueDate(values *taskform.Values, errOut io.Writer) int {
	raw := strings.TrimSpace(c.due.value)
	if raw == "" || strings.EqualFold(raw, "none") {
		// An absent dueDate leaves the stored date unchanged.
		fmt.Fprintln(errOut, "error: clearing a due date is not supported")
		return exitcode.UserError
	}

	d, err := time.ParseInLocation(dueDateLayout, raw, time.Local)
	if err != nil {
		fmt.Fprintf(errOut, "error: invalid due date: %s (want YYYY-MM-DD)\n", raw)
		return exitcode.UserError
	}

	now := time.Now
	if c.now != nil {
		now = c.now
	}
	if err := values.PickDueDate(d, now()); err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}

// normalizeEnum accepts "in progress", "in-progress" and "IN_PROGRESS" alike.
func normalizeEnum(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}
