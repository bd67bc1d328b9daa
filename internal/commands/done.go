package commands

import (
	"context"
	"flag"
	"io"

	"go.uber.org/zap"

	"teamsync/internal/exitcode"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct {
	scope scopeFlags
}

// SetScope sets the project and workspace (for testing).
func (c *DoneCmd) SetScope(project, workspace string) {
	c.scope = scopeFlags{project: project, workspace: workspace}
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return nil }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string {
	return "teamsync done [--project <id>] [--workspace <id>] [--list] <ref>"
}
func (c *DoneCmd) NeedsAuth() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	c.scope.register(fs)
	c.scope.registerList(fs)
}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return runToggle(ctx, env, &c.scope, true, args, out, errOut)
}

// UndoneCmd moves a completed task back to TODO.
type UndoneCmd struct {
	scope scopeFlags
}

// SetScope sets the project and workspace (for testing).
func (c *UndoneCmd) SetScope(project, workspace string) {
	c.scope = scopeFlags{project: project, workspace: workspace}
}

func (c *UndoneCmd) Name() string      { return "undone" }
func (c *UndoneCmd) Aliases() []string { return []string{"reopen"} }
func (c *UndoneCmd) Synopsis() string  { return "Mark a task not completed" }
func (c *UndoneCmd) Usage() string {
	return "teamsync undone [--project <id>] [--workspace <id>] [--list] <ref>"
}
func (c *UndoneCmd) NeedsAuth() bool { return true }

func (c *UndoneCmd) RegisterFlags(fs *flag.FlagSet) {
	c.scope.register(fs)
	c.scope.registerList(fs)
}

func (c *UndoneCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return runToggle(ctx, env, &c.scope, false, args, out, errOut)
}

// runToggle is the shared implementation for done and undone. Mutation
// outcomes are reported through the notifier.
func runToggle(ctx context.Context, env *Env, scope *scopeFlags, checked bool, args []string, out, errOut io.Writer) int {
	view, err := scope.view(env)
	if err != nil {
		return fail(errOut, err)
	}
	task, err := lookupTask(ctx, view, args)
	if err != nil {
		return fail(errOut, err)
	}

	stop := watchListing(ctx, scope, view, out)
	defer stop()

	toggle := view.Toggle(env.Notifier)
	if err := toggle.Toggle(ctx, task, checked); err != nil {
		env.log().Debug("toggle failed", zap.String("task", task.ID), zap.Error(err))
		return exitCodeFor(err)
	}
	return exitcode.Success
}
