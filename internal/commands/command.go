// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"go.uber.org/zap"

	"teamsync/internal/config"
	"teamsync/internal/output"
	"teamsync/internal/query"
	"teamsync/internal/service"
	"teamsync/internal/session"
)

// Env is everything a command runs against.
type Env struct {
	// Config is always provided (config dir, API URL, flags).
	Config *config.Config

	// Session holds the access token and current workspace.
	Session *session.Store

	// Service talks to the TeamSync API. It is nil when no factory is set.
	Service service.Service

	// Cache holds query results for the invocation.
	Cache *query.Client

	// Notifier shows mutation outcomes.
	Notifier output.Notifier

	Logger *zap.Logger
}

func (e *Env) log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a stored access token.
	// Commands like help, version, login, logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}
