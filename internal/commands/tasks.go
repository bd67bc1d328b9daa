package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"teamsync/internal/exitcode"
)

func init() {
	Register(&TasksCmd{})
}

// TasksCmd renders the task table.
// Handles both `teamsync` (no args) and `teamsync tasks`.
type TasksCmd struct {
	scope scopeFlags
}

// SetScope sets the project and workspace (for testing).
func (c *TasksCmd) SetScope(project, workspace string) {
	c.scope = scopeFlags{project: project, workspace: workspace}
}

func (c *TasksCmd) Name() string      { return "tasks" }
func (c *TasksCmd) Aliases() []string { return []string{"ls"} }
func (c *TasksCmd) Synopsis() string  { return "List tasks" }
func (c *TasksCmd) Usage() string {
	return "teamsync tasks [--project <id>] [--workspace <id>]"
}
func (c *TasksCmd) NeedsAuth() bool { return true }

func (c *TasksCmd) RegisterFlags(fs *flag.FlagSet) {
	c.scope.register(fs)
}

func (c *TasksCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	view, err := c.scope.view(env)
	if err != nil {
		return fail(errOut, err)
	}
	tasks, err := view.Tasks(ctx)
	if err != nil {
		return fail(errOut, err)
	}

	view.Render(out, tasks)
	return exitcode.Success
}
