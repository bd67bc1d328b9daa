// Package exitcode defines exit codes for the CLI.
package exitcode

// Exit codes shared by every command.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates bad arguments, an unknown task or a rejected form.
	UserError = 1

	// AuthError indicates a missing or rejected token, or a failed sign-in.
	AuthError = 2

	// BackendError indicates an API or network error.
	BackendError = 3
)
