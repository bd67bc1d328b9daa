package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"teamsync/internal/exitcode"
)

func init() {
	Register(&WorkspaceCmd{})
}

// WorkspaceCmd shows or switches the current workspace.
type WorkspaceCmd struct{}

func (c *WorkspaceCmd) Name() string      { return "workspace" }
func (c *WorkspaceCmd) Aliases() []string { return []string{"ws"} }
func (c *WorkspaceCmd) Synopsis() string  { return "Show or set the current workspace" }
func (c *WorkspaceCmd) Usage() string     { return "teamsync workspace [common flags] [<id>]" }
func (c *WorkspaceCmd) NeedsAuth() bool   { return false }

func (c *WorkspaceCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WorkspaceCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	if len(args) == 0 {
		ws, err := resolveWorkspace(env, "")
		if err != nil {
			return fail(errOut, err)
		}
		fmt.Fprintln(out, ws)
		return exitcode.Success
	}

	id := strings.TrimSpace(args[0])
	if id == "" {
		fmt.Fprintln(errOut, "error: workspace id required")
		return exitcode.UserError
	}
	if err := workspaceNavigator(env, out).Navigate("/workspace/" + id); err != nil {
		fmt.Fprintf(errOut, "error: failed to save workspace: %v\n", err)
		return exitcode.AuthError
	}
	return exitcode.Success
}
