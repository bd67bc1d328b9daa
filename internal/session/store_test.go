package session_test

import (
	"errors"
	"path/filepath"
	"testing"

	"teamsync/internal/session"
)

func TestStore_SetAndClear(t *testing.T) {
	s := session.NewMemory()

	if s.IsAuthenticated() {
		t.Fatal("new store should not be authenticated")
	}

	if err := s.SetAccessToken("tok"); err != nil {
		t.Fatalf("SetAccessToken: %v", err)
	}
	if !s.IsAuthenticated() {
		t.Error("expected authenticated after SetAccessToken")
	}
	if s.AccessToken() != "tok" {
		t.Errorf("expected token %q, got %q", "tok", s.AccessToken())
	}

	if err := s.ClearAccessToken(); err != nil {
		t.Fatalf("ClearAccessToken: %v", err)
	}
	if s.IsAuthenticated() {
		t.Error("expected unauthenticated after ClearAccessToken")
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := session.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SetAccessToken("persisted"); err != nil {
		t.Fatalf("SetAccessToken: %v", err)
	}
	if err := s.SetWorkspace("ws-9"); err != nil {
		t.Fatalf("SetWorkspace: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := session.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if got := reopened.AccessToken(); got != "persisted" {
		t.Errorf("expected persisted token, got %q", got)
	}
	if got := reopened.Workspace(); got != "ws-9" {
		t.Errorf("expected persisted workspace, got %q", got)
	}
}

func TestStore_ClearPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := session.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = s.SetAccessToken("tok")
	_ = s.ClearAccessToken()
	s.Close()

	reopened, err := session.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if reopened.IsAuthenticated() {
		t.Error("cleared token should stay cleared after reopen")
	}
}

func TestStore_TokenSource(t *testing.T) {
	s := session.NewMemory()

	if _, err := s.Token(); !errors.Is(err, session.ErrNoToken) {
		t.Errorf("expected ErrNoToken, got %v", err)
	}

	_ = s.SetAccessToken("abc")
	tok, err := s.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.AccessToken != "abc" || tok.TokenType != "Bearer" {
		t.Errorf("unexpected token %+v", tok)
	}
}
