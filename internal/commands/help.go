package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"teamsync/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "teamsync help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	fmt.Fprintf(out, "\nCommands:\n%s", DefaultRegistry.Summary())
	return exitcode.Success
}

const helpText = `Usage:
  teamsync                                           List tasks in the current workspace
  teamsync tasks [common flags] [--project <id>] [--workspace <id>]
  teamsync done [common flags] [--project <id>] [--workspace <id>] [--list] <ref>
  teamsync undone [common flags] [--project <id>] [--workspace <id>] [--list] <ref>
  teamsync edit [common flags] [--title <t>] [--description <d>] [--priority <p>]
                [--status <s>] [--assignee <id|name>] [--due <YYYY-MM-DD>] [--list] <ref>
  teamsync members [common flags] [--workspace <id>]
  teamsync workspace [common flags] [<id>]
  teamsync whoami [common flags]
  teamsync login [common flags] [--port <n>]
  teamsync callback [common flags] <redirect-url>
  teamsync logout [common flags]
  teamsync help
  teamsync version

A <ref> is a row number from "teamsync tasks", a task code or a task id.
--list prints the refreshed task table after a change.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
