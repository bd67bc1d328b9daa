package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"teamsync/internal/exitcode"
	"teamsync/internal/query"
	"teamsync/internal/service"
	"teamsync/internal/taskform"
)

func init() {
	Register(&MembersCmd{})
}

// MembersCmd lists the members of a workspace.
type MembersCmd struct {
	workspace string
}

// SetWorkspace sets the workspace (for testing).
func (c *MembersCmd) SetWorkspace(ws string) {
	c.workspace = ws
}

func (c *MembersCmd) Name() string      { return "members" }
func (c *MembersCmd) Aliases() []string { return nil }
func (c *MembersCmd) Synopsis() string  { return "List workspace members" }
func (c *MembersCmd) Usage() string     { return "teamsync members [--workspace <id>]" }
func (c *MembersCmd) NeedsAuth() bool   { return true }

func (c *MembersCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.workspace, "workspace", "", "")
	fs.StringVar(&c.workspace, "w", "", "")
}

func (c *MembersCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	ws, err := resolveWorkspace(env, c.workspace)
	if err != nil {
		return fail(errOut, err)
	}

	opts := query.Options{Retry: taskform.MembersRetry, Enabled: true}
	members, err := query.Fetch(ctx, env.Cache, query.MembersKey(ws), opts, func(ctx context.Context) ([]service.Member, error) {
		return env.Service.ListMembers(ctx, ws)
	})
	if err != nil {
		return fail(errOut, err)
	}

	if len(members) == 0 {
		fmt.Fprintln(out, "No members found.")
		return exitcode.Success
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Name"})
	for _, m := range members {
		t.AppendRow(table.Row{m.ID, m.Name})
	}
	t.Render()
	return exitcode.Success
}
