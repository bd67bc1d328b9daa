// Package api implements the service.Service interface against the TeamSync REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"teamsync/internal/logging"
	"teamsync/internal/service"
)

const (
	// DefaultTimeout is used when the caller does not set one.
	DefaultTimeout = 10 * time.Second

	// RequestIDHeader carries the per-request correlation id.
	RequestIDHeader = "X-Request-ID"
)

var (
	// ErrUnauthorized is returned for 401/403 responses.
	ErrUnauthorized = errors.New("token expired or revoked (run: teamsync login)")

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("not found")

	// ErrTimeout is returned when a call exceeds its deadline.
	ErrTimeout = errors.New("request timed out")
)

// Client implements service.Service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     *zap.Logger
}

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. http://localhost:8000/api.
	BaseURL string

	// Tokens supplies the bearer token for every request.
	Tokens oauth2.TokenSource

	// Timeout bounds each call. Zero means DefaultTimeout.
	Timeout time.Duration

	// Transport is the underlying round tripper. Nil means http.DefaultTransport.
	Transport http.RoundTripper

	Logger *zap.Logger
}

// New creates a client that authenticates with opts.Tokens.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	var rt http.RoundTripper = base
	if opts.Tokens != nil {
		rt = &oauth2.Transport{Source: opts.Tokens, Base: base}
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    &http.Client{Transport: rt},
		timeout: timeout,
		log:     log,
	}
}

// LoginURL returns the browser entry point of the Google sign-in flow under
// baseURL. redirectURI, when set, asks the API to send the final redirect there.
func LoginURL(baseURL, redirectURI string) string {
	u := strings.TrimRight(baseURL, "/") + "/auth/google"
	if redirectURI == "" {
		return u
	}
	return u + "?" + url.Values{"redirect_uri": {redirectURI}}.Encode()
}

type currentUserResponse struct {
	Message string       `json:"message"`
	User    service.User `json:"user"`
}

// CurrentUser returns the authenticated user's profile.
func (c *Client) CurrentUser(ctx context.Context) (service.User, error) {
	var resp currentUserResponse
	if err := c.do(ctx, http.MethodGet, "/user/current", nil, &resp); err != nil {
		return service.User{}, err
	}
	return resp.User, nil
}

type allTasksResponse struct {
	Message string         `json:"message"`
	Tasks   []service.Task `json:"tasks"`
}

// ListTasks returns the tasks of a workspace, optionally narrowed to a project.
func (c *Client) ListTasks(ctx context.Context, workspaceID string, filter service.TaskFilter) ([]service.Task, error) {
	q := url.Values{}
	if filter.ProjectID != "" {
		q.Set("projectId", filter.ProjectID)
	}
	if filter.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(filter.PageSize))
	}
	if filter.PageNumber > 0 {
		q.Set("pageNumber", strconv.Itoa(filter.PageNumber))
	}

	path := "/task/workspace/" + url.PathEscape(workspaceID) + "/all"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp allTasksResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

type messageResponse struct {
	Message string `json:"message"`
}

// UpdateTask applies a partial update and returns the server message.
func (c *Client) UpdateTask(ctx context.Context, in service.UpdateTaskInput) (string, error) {
	path := fmt.Sprintf("/task/%s/project/%s/workspace/%s/update",
		url.PathEscape(in.TaskID), url.PathEscape(in.ProjectID), url.PathEscape(in.WorkspaceID))

	var resp messageResponse
	if err := c.do(ctx, http.MethodPut, path, in.Data, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

type membersResponse struct {
	Message string `json:"message"`
	Members []struct {
		UserID struct {
			ID   string `json:"_id"`
			Name string `json:"name"`
		} `json:"userId"`
	} `json:"members"`
}

// ListMembers returns the members of a workspace.
func (c *Client) ListMembers(ctx context.Context, workspaceID string) ([]service.Member, error) {
	var resp membersResponse
	if err := c.do(ctx, http.MethodGet, "/workspace/members/"+url.PathEscape(workspaceID), nil, &resp); err != nil {
		return nil, err
	}

	members := make([]service.Member, 0, len(resp.Members))
	for _, m := range resp.Members {
		members = append(members, service.Member{ID: m.UserID.ID, Name: m.UserID.Name})
	}
	return members, nil
}

// do performs one JSON request with a timeout and request id.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx = logging.ContextWithRequestID(ctx, uuid.NewString())
	log := logging.WithRequestID(ctx, c.log)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, logging.RequestID(ctx))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		log.Debug("api request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return wrapError(err)
	}
	defer res.Body.Close()

	log.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if err := googleapi.CheckResponse(res); err != nil {
		return wrapError(err)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

// wrapError maps transport and HTTP errors to user-facing errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}

	if msg := serverMessage(apiErr.Body); msg != "" {
		return fmt.Errorf("%s (HTTP %d)", msg, apiErr.Code)
	}
	return fmt.Errorf("unexpected response: HTTP %d", apiErr.Code)
}

// serverMessage extracts the "message" field the API puts in error bodies.
func serverMessage(body string) string {
	var payload messageResponse
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	return payload.Message
}

var _ service.Service = (*Client)(nil)
