package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"teamsync/internal/auth"
	"teamsync/internal/exitcode"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd prints the signed-in user.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the signed-in user" }
func (c *WhoamiCmd) Usage() string     { return "teamsync whoami [common flags]" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	q := &auth.UserQuery{Tokens: env.Session, Service: env.Service, Cache: env.Cache}
	user, err := q.Fetch(ctx)
	if err != nil {
		return fail(errOut, err)
	}

	if user.Email != "" {
		fmt.Fprintf(out, "%s <%s>\n", user.Name, user.Email)
	} else {
		fmt.Fprintln(out, user.Name)
	}
	if ws := env.Session.Workspace(); ws != "" {
		fmt.Fprintf(out, "workspace: %s\n", ws)
	} else if user.CurrentWorkspace != "" {
		fmt.Fprintf(out, "workspace: %s\n", user.CurrentWorkspace)
	}
	return exitcode.Success
}
