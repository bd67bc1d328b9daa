package auth_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"teamsync/internal/auth"
)

func TestCallbackServer_ReceivesRedirect(t *testing.T) {
	srv, err := auth.ListenCallback(0)
	if err != nil {
		t.Fatalf("ListenCallback: %v", err)
	}
	defer srv.Close()

	if !strings.HasSuffix(srv.URL(), auth.CallbackPath) {
		t.Errorf("unexpected callback url %q", srv.URL())
	}

	resp, err := http.Get(srv.URL() + "?status=success&access_token=T&current_workspace=W")
	if err != nil {
		t.Fatalf("GET callback: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if !strings.Contains(string(body), "Signing you in") {
		t.Errorf("expected signing-in page, got %q", body)
	}

	params, err := srv.Wait(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if params.Get("access_token") != "T" || params.Get("current_workspace") != "W" {
		t.Errorf("unexpected params %v", params)
	}
}

func TestCallbackServer_FailurePage(t *testing.T) {
	srv, err := auth.ListenCallback(0)
	if err != nil {
		t.Fatalf("ListenCallback: %v", err)
	}
	defer srv.Close()

	resp, err := http.Get(srv.URL() + "?status=failure")
	if err != nil {
		t.Fatalf("GET callback: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if !strings.Contains(string(body), "Authentication Failed") {
		t.Errorf("expected failure page, got %q", body)
	}
}

func TestCallbackServer_WaitTimeout(t *testing.T) {
	srv, err := auth.ListenCallback(0)
	if err != nil {
		t.Fatalf("ListenCallback: %v", err)
	}
	defer srv.Close()

	_, err = srv.Wait(context.Background(), 10*time.Millisecond)
	if !errors.Is(err, auth.ErrCallbackTimeout) {
		t.Errorf("expected ErrCallbackTimeout, got %v", err)
	}
}
