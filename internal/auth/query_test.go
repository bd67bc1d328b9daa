package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"teamsync/internal/auth"
	"teamsync/internal/query"
	"teamsync/internal/service"
	"teamsync/internal/session"
	"teamsync/internal/testutil"
)

func newUserQuery(store *session.Store, svc *testutil.FakeService) *auth.UserQuery {
	return &auth.UserQuery{
		Tokens:     store,
		Service:    svc,
		Cache:      query.NewClient(nil),
		RetryDelay: func(int) time.Duration { return 0 },
	}
}

func TestUserQuery_DisabledWithoutToken(t *testing.T) {
	svc := testutil.NewFakeService()
	q := newUserQuery(session.NewMemory(), svc)

	_, err := q.Fetch(context.Background())
	if !errors.Is(err, query.ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
	if svc.CurrentUserCalls() != 0 {
		t.Errorf("expected no request, got %d", svc.CurrentUserCalls())
	}
}

func TestUserQuery_FetchesAndCaches(t *testing.T) {
	store := session.NewMemory()
	_ = store.SetAccessToken("tok")
	svc := testutil.NewFakeService()
	svc.SetUser(service.User{ID: "u1", Name: "Ada"})
	q := newUserQuery(store, svc)

	for i := 0; i < 3; i++ {
		user, err := q.Fetch(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Name != "Ada" {
			t.Errorf("expected Ada, got %q", user.Name)
		}
	}
	if svc.CurrentUserCalls() != 1 {
		t.Errorf("expected one request within stale time, got %d", svc.CurrentUserCalls())
	}
}

func TestUserQuery_RetriesOnce(t *testing.T) {
	store := session.NewMemory()
	_ = store.SetAccessToken("tok")

	t.Run("recovers on retry", func(t *testing.T) {
		svc := testutil.NewFakeService()
		svc.CurrentUserErr = errors.New("network down")
		svc.CurrentUserFailures = 1

		if _, err := newUserQuery(store, svc).Fetch(context.Background()); err != nil {
			t.Fatalf("expected retry to succeed, got %v", err)
		}
		if svc.CurrentUserCalls() != 2 {
			t.Errorf("expected 2 calls, got %d", svc.CurrentUserCalls())
		}
	})

	t.Run("gives up after one retry", func(t *testing.T) {
		svc := testutil.NewFakeService()
		svc.CurrentUserErr = errors.New("network down")

		if _, err := newUserQuery(store, svc).Fetch(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if svc.CurrentUserCalls() != 2 {
			t.Errorf("expected 2 calls, got %d", svc.CurrentUserCalls())
		}
	})
}
