package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"teamsync/internal/api"
	"teamsync/internal/auth"
	"teamsync/internal/exitcode"
)

func init() {
	Register(&LoginCmd{})
	Register(&CallbackCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	port int
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in with Google" }
func (c *LoginCmd) Usage() string     { return "teamsync login [common flags] [--port <n>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.port, "port", 0, "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	// A stored token that still works needs no new sign-in.
	if env.Session.IsAuthenticated() && env.Service != nil {
		q := &auth.UserQuery{Tokens: env.Session, Service: env.Service, Cache: env.Cache}
		if user, err := q.Fetch(ctx); err == nil {
			if !env.Config.Quiet {
				fmt.Fprintf(out, "already logged in as %s\n", user.Name)
			}
			return exitcode.Success
		}
	}

	port := c.port
	if port <= 0 {
		port = env.Config.CallbackPort
	}
	srv, err := auth.ListenCallback(port)
	if err != nil {
		fmt.Fprintln(errOut, "error: could not bind to local port for OAuth callback")
		return exitcode.AuthError
	}
	defer srv.Close()

	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, api.LoginURL(env.Config.APIURL, srv.URL()))

	params, err := srv.Wait(ctx, auth.CallbackTimeout)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrCallbackTimeout):
			fmt.Fprintln(errOut, "error: oauth callback timed out")
		case ctx.Err() != nil:
			fmt.Fprintln(errOut, "error: cancelled")
		default:
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.AuthError
	}

	return signIn(ctx, env, params, out, errOut)
}

// CallbackCmd applies a redirect URL pasted from the browser.
type CallbackCmd struct{}

func (c *CallbackCmd) Name() string      { return "callback" }
func (c *CallbackCmd) Aliases() []string { return nil }
func (c *CallbackCmd) Synopsis() string  { return "Complete sign-in from a redirect URL" }
func (c *CallbackCmd) Usage() string     { return "teamsync callback [common flags] <redirect-url>" }
func (c *CallbackCmd) NeedsAuth() bool   { return false }

func (c *CallbackCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CallbackCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: redirect url required")
		return exitcode.UserError
	}

	params, err := callbackParams(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: invalid redirect url: %v\n", err)
		return exitcode.UserError
	}
	return signIn(ctx, env, params, out, errOut)
}

// callbackParams extracts the query of a full redirect URL or a bare query string.
func callbackParams(raw string) (url.Values, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[i+1:]
	}
	return url.ParseQuery(raw)
}

// signIn shows the callback view, stores the token and navigates to the
// workspace.
func signIn(ctx context.Context, env *Env, params url.Values, out, errOut io.Writer) int {
	result := auth.ParseCallback(params)
	if result.Outcome == auth.Success {
		if !env.Config.Quiet {
			auth.RenderText(out, result)
		}
	} else {
		auth.RenderText(errOut, result)
	}

	handler := &auth.CallbackHandler{
		Tokens:    env.Session,
		Navigator: workspaceNavigator(env, out),
		Logger:    env.log(),
	}
	result, err := handler.Handle(ctx, params)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	if result.Outcome != auth.Success {
		return exitcode.AuthError
	}

	// Anything cached belonged to the previous session.
	env.Cache.Clear()
	env.log().Debug("signed in", zap.String("workspace", result.Workspace))
	return exitcode.Success
}

// workspaceNavigator persists the workspace named by a route and reports the
// route.
func workspaceNavigator(env *Env, out io.Writer) auth.Navigator {
	return auth.NavigatorFunc(func(route string) error {
		if ws, ok := strings.CutPrefix(route, "/workspace/"); ok && ws != "" {
			if err := env.Session.SetWorkspace(ws); err != nil {
				return err
			}
		}
		if !env.Config.Quiet {
			fmt.Fprintf(out, "ok: %s\n", route)
		}
		return nil
	})
}
