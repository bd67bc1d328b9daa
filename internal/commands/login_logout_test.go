package commands_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"teamsync/internal/commands"
	"teamsync/internal/config"
	"teamsync/internal/exitcode"
	"teamsync/internal/output"
	"teamsync/internal/query"
	"teamsync/internal/session"
	"teamsync/internal/testutil"
)

// syncBuffer is a bytes.Buffer safe for a concurrent reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.LogoutCmd{}, nil, session.NewMemory(), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "not logged in\n" {
		t.Errorf("expected 'not logged in', got %q", stdout)
	}
}

func TestLogoutCommand_LoggedIn(t *testing.T) {
	tests := []struct {
		name    string
		quiet   bool
		wantOut string
	}{
		{"default", false, "ok\n"},
		{"quiet", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := signedIn(workspace)
			stdout, _, code := runCommand(t, &commands.LogoutCmd{}, nil, store, nil, tt.quiet)

			if code != exitcode.Success {
				t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
			}
			if stdout != tt.wantOut {
				t.Errorf("expected %q, got %q", tt.wantOut, stdout)
			}
			if store.IsAuthenticated() {
				t.Error("expected token to be removed")
			}
			if store.Workspace() != "" {
				t.Errorf("expected workspace to be cleared, got %q", store.Workspace())
			}
		})
	}
}

func TestCallbackCommand(t *testing.T) {
	tests := []struct {
		name          string
		redirect      string
		wantCode      int
		wantOut       string
		wantErrSubstr string
		wantToken     string
		wantWorkspace string
	}{
		{
			name:          "success",
			redirect:      "http://localhost:8085/google/oauth/callback?status=success&access_token=T&current_workspace=W",
			wantCode:      exitcode.Success,
			wantOut:       "Signing you in...\nPlease wait while we complete your authentication.\nok: /workspace/W\n",
			wantToken:     "T",
			wantWorkspace: "W",
		},
		{
			name:      "success without workspace",
			redirect:  "status=success&access_token=T",
			wantCode:  exitcode.Success,
			wantOut:   "Signing you in...\nPlease wait while we complete your authentication.\nok: /\n",
			wantToken: "T",
		},
		{
			name:          "failure",
			redirect:      "http://localhost:8085/google/oauth/callback?status=failure",
			wantCode:      exitcode.AuthError,
			wantErrSubstr: "Authentication Failed",
		},
		{
			name:          "success without token is pending",
			redirect:      "?status=success",
			wantCode:      exitcode.AuthError,
			wantErrSubstr: "Authentication Failed",
		},
		{
			name:          "no status",
			redirect:      "?access_token=T",
			wantCode:      exitcode.AuthError,
			wantErrSubstr: "Authentication Failed",
		},
		{
			name:          "malformed query",
			redirect:      "?status=%zz",
			wantCode:      exitcode.UserError,
			wantErrSubstr: "invalid redirect url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewMemory()
			stdout, stderr, code := runCommand(t, &commands.CallbackCmd{}, nil, store, []string{tt.redirect}, false)

			if code != tt.wantCode {
				t.Fatalf("expected exit code %d, got %d (stderr %q)", tt.wantCode, code, stderr)
			}
			if tt.wantOut != "" && stdout != tt.wantOut {
				t.Errorf("expected %q, got %q", tt.wantOut, stdout)
			}
			if tt.wantErrSubstr != "" && !strings.Contains(stderr, tt.wantErrSubstr) {
				t.Errorf("expected stderr to contain %q, got %q", tt.wantErrSubstr, stderr)
			}
			if got := store.AccessToken(); got != tt.wantToken {
				t.Errorf("expected token %q, got %q", tt.wantToken, got)
			}
			if got := store.Workspace(); got != tt.wantWorkspace {
				t.Errorf("expected workspace %q, got %q", tt.wantWorkspace, got)
			}
		})
	}
}

func TestCallbackCommand_MissingURL(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.CallbackCmd{}, nil, session.NewMemory(), nil, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: redirect url required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestLoginCommand_AlreadyLoggedIn(t *testing.T) {
	svc := testutil.NewFakeService()
	stdout, _, code := runCommand(t, &commands.LoginCmd{}, svc, signedIn(workspace), nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "already logged in as Test User\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func loginEnv(t *testing.T, store *session.Store, out, errOut io.Writer) *commands.Env {
	t.Helper()
	return &commands.Env{
		Config:   &config.Config{Dir: t.TempDir(), APIURL: "http://api.test/", CallbackPort: 0},
		Session:  store,
		Cache:    query.NewClient(nil),
		Notifier: output.NewToaster(out, errOut, false, false),
	}
}

func TestLoginCommand_Cancelled(t *testing.T) {
	var stdout, stderr bytes.Buffer
	store := session.NewMemory()
	env := loginEnv(t, store, &stdout, &stderr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := (&commands.LoginCmd{}).Run(ctx, env, nil, &stdout, &stderr)
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	for _, want := range []string{"Open this URL in your browser:", "http://api.test/auth/google?redirect_uri=", "error: cancelled"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("expected stderr to contain %q, got %q", want, stderr.String())
		}
	}
	if store.IsAuthenticated() {
		t.Error("expected no token")
	}
}

func TestLoginCommand_Browser(t *testing.T) {
	var stdout, stderr syncBuffer
	store := session.NewMemory()
	env := loginEnv(t, store, &stdout, &stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan int, 1)
	go func() {
		done <- (&commands.LoginCmd{}).Run(ctx, env, nil, &stdout, &stderr)
	}()

	redirect := waitForRedirectURI(t, &stderr)
	resp, err := http.Get(redirect + "?status=success&access_token=T&current_workspace=W")
	if err != nil {
		t.Fatalf("callback request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	select {
	case code := <-done:
		if code != exitcode.Success {
			t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr.String())
		}
	case <-ctx.Done():
		t.Fatal("login did not finish")
	}

	if store.AccessToken() != "T" || store.Workspace() != "W" {
		t.Errorf("unexpected session %+v", store.Snapshot())
	}
	if !strings.HasSuffix(stdout.String(), "ok: /workspace/W\n") {
		t.Errorf("unexpected stdout %q", stdout.String())
	}
}

// waitForRedirectURI polls the login output for the printed login URL and
// returns its redirect_uri.
func waitForRedirectURI(t *testing.T, stderr *syncBuffer) string {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		for _, line := range strings.Split(stderr.String(), "\n") {
			if !strings.Contains(line, "redirect_uri=") {
				continue
			}
			u, err := url.Parse(strings.TrimSpace(line))
			if err != nil {
				t.Fatalf("invalid login url %q: %v", line, err)
			}
			return u.Query().Get("redirect_uri")
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("login url not printed: %q", stderr.String())
	return ""
}
