// Package auth covers authentication: the current-user query and OAuth
// redirect handling.
package auth

import (
	"context"
	"time"

	"teamsync/internal/query"
	"teamsync/internal/service"
)

const (
	// UserStaleTime is how long the current-user profile is served from cache.
	UserStaleTime = 5 * time.Minute

	// UserRetry is the number of retries after a failed profile fetch.
	UserRetry = 1
)

// TokenHolder reports whether an access token is present.
type TokenHolder interface {
	IsAuthenticated() bool
}

// UserQuery fetches the current user, conditioned on token presence.
type UserQuery struct {
	Tokens  TokenHolder
	Service service.Service
	Cache   *query.Client

	// RetryDelay overrides the wait before the retry (for testing).
	RetryDelay func(attempt int) time.Duration
}

// Fetch returns the current user. It returns query.ErrDisabled without
// issuing a request when no token is stored.
func (q *UserQuery) Fetch(ctx context.Context) (service.User, error) {
	opts := query.Options{
		StaleTime:  UserStaleTime,
		Retry:      UserRetry,
		RetryDelay: q.RetryDelay,
		Enabled:    q.Tokens.IsAuthenticated(),
	}
	return query.Fetch(ctx, q.Cache, query.AuthUserKey, opts, q.Service.CurrentUser)
}
