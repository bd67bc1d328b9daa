package commands

import (
	"errors"
	"fmt"
	"io"

	"teamsync/internal/api"
	"teamsync/internal/exitcode"
	"teamsync/internal/query"
	"teamsync/internal/service"
	"teamsync/internal/session"
	"teamsync/internal/taskform"
	"teamsync/internal/tasktable"
)

// ErrNoWorkspace is returned when no workspace is selected.
var ErrNoWorkspace = errors.New("no workspace selected (run: teamsync workspace <id>)")

// exitCodeFor maps an error to an exit code.
func exitCodeFor(err error) int {
	var verr *taskform.ValidationError
	switch {
	case err == nil:
		return exitcode.Success
	case errors.Is(err, api.ErrUnauthorized),
		errors.Is(err, session.ErrNoToken),
		errors.Is(err, query.ErrDisabled):
		return exitcode.AuthError
	case errors.As(err, &verr),
		errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, api.ErrNotFound),
		errors.Is(err, ErrNoWorkspace),
		errors.Is(err, ErrTaskRefRequired),
		errors.Is(err, ErrInvalidTaskRef),
		errors.Is(err, ErrTaskNotFound),
		errors.Is(err, taskform.ErrSubmitInFlight),
		errors.Is(err, tasktable.ErrTogglePending):
		return exitcode.UserError
	default:
		return exitcode.BackendError
	}
}

// fail prints err and returns its exit code.
func fail(errOut io.Writer, err error) int {
	code := exitCodeFor(err)
	if code == exitcode.BackendError {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	} else {
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return code
}

// resolveWorkspace picks the workspace from the flag, the session, then the
// config file, in that order.
func resolveWorkspace(env *Env, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env.Session != nil {
		if ws := env.Session.Workspace(); ws != "" {
			return ws, nil
		}
	}
	if env.Config != nil && env.Config.Workspace != "" {
		return env.Config.Workspace, nil
	}
	return "", ErrNoWorkspace
}
