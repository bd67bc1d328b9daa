package auth

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Redirect query parameters sent by the identity-provider flow.
const (
	ParamStatus           = "status"
	ParamAccessToken      = "access_token"
	ParamCurrentWorkspace = "current_workspace"
)

// NavigateDelay is the pause between storing the token and navigating.
const NavigateDelay = 500 * time.Millisecond

// Outcome classifies a redirect.
type Outcome int

const (
	// Pending covers every redirect that is neither a usable success nor an
	// explicit failure, including status=success without a token.
	Pending Outcome = iota
	Success
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "pending"
}

// Result is a parsed redirect.
type Result struct {
	Outcome     Outcome
	AccessToken string
	Workspace   string
}

// Route returns where a successful sign-in lands.
func (r Result) Route() string {
	if r.Workspace != "" {
		return "/workspace/" + r.Workspace
	}
	return "/"
}

// ParseCallback classifies redirect query parameters.
func ParseCallback(params url.Values) Result {
	r := Result{
		AccessToken: params.Get(ParamAccessToken),
		Workspace:   params.Get(ParamCurrentWorkspace),
	}
	switch status := params.Get(ParamStatus); {
	case status == "success" && r.AccessToken != "":
		r.Outcome = Success
	case status == "failure":
		r.Outcome = Failure
	default:
		r.Outcome = Pending
	}
	return r
}

// TokenSetter stores the access token.
type TokenSetter interface {
	SetAccessToken(token string) error
}

// Navigator moves the user to a route.
type Navigator interface {
	Navigate(route string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string) error

// Navigate calls f(route).
func (f NavigatorFunc) Navigate(route string) error { return f(route) }

// CallbackHandler applies a redirect to the session.
type CallbackHandler struct {
	Tokens    TokenSetter
	Navigator Navigator
	Logger    *zap.Logger

	// Delay overrides NavigateDelay when positive.
	Delay time.Duration
}

// Handle parses params and acts on them. A success stores the token and, after
// the delay, navigates to the workspace route. A failure is only logged. The
// returned Result is always the parsed redirect, also when an error occurs.
// Cancelling ctx during the delay skips navigation and returns ctx.Err().
func (h *CallbackHandler) Handle(ctx context.Context, params url.Values) (Result, error) {
	log := h.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := ParseCallback(params)
	switch r.Outcome {
	case Failure:
		log.Info("Google auth failed")
		return r, nil
	case Pending:
		log.Debug("oauth callback without usable outcome", zap.String("status", params.Get(ParamStatus)))
		return r, nil
	}

	if err := h.Tokens.SetAccessToken(r.AccessToken); err != nil {
		return r, fmt.Errorf("failed to store token: %w", err)
	}

	delay := h.Delay
	if delay <= 0 {
		delay = NavigateDelay
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return r, ctx.Err()
	}

	route := r.Route()
	log.Debug("navigating after sign-in", zap.String("route", route))
	if err := h.Navigator.Navigate(route); err != nil {
		return r, fmt.Errorf("failed to navigate to %s: %w", route, err)
	}
	return r, nil
}

// RenderText writes the terminal view for r.
func RenderText(w io.Writer, r Result) {
	if r.Outcome == Success {
		fmt.Fprintln(w, "Signing you in...")
		fmt.Fprintln(w, "Please wait while we complete your authentication.")
		return
	}
	fmt.Fprintln(w, "Authentication Failed")
	fmt.Fprintln(w, "We couldn't sign you in with Google. Please try again.")
}

// RenderHTML writes the browser view for r.
func RenderHTML(w io.Writer, r Result) {
	if r.Outcome == Success {
		fmt.Fprint(w, "<html><body><h1>Signing you in...</h1><p>Please wait while we complete your authentication. You may close this window.</p></body></html>")
		return
	}
	fmt.Fprint(w, "<html><body><h1>Authentication Failed</h1><p>We couldn't sign you in with Google. Please try again.</p></body></html>")
}
