package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

const (
	// CallbackPath is where the local server expects the redirect.
	CallbackPath = "/google/oauth/callback"

	// CallbackTimeout bounds the wait for the browser redirect.
	CallbackTimeout = 5 * time.Minute

	// MaxPortAttempts is how many consecutive ports are tried.
	MaxPortAttempts = 5
)

// ErrCallbackTimeout is returned when no redirect arrives in time.
var ErrCallbackTimeout = errors.New("oauth callback timed out")

// CallbackServer receives one identity-provider redirect on localhost.
type CallbackServer struct {
	port     int
	listener net.Listener
	server   *http.Server
	params   chan url.Values
	errs     chan error
}

// ListenCallback binds the first free port starting at startPort and starts serving.
func ListenCallback(startPort int) (*CallbackServer, error) {
	port, listener, err := findAvailablePort(startPort)
	if err != nil {
		return nil, err
	}

	s := &CallbackServer{
		port:     port,
		listener: listener,
		params:   make(chan url.Values, 1),
		errs:     make(chan error, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, s.handle)
	s.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case s.errs <- err:
			default:
			}
		}
	}()
	return s, nil
}

func (s *CallbackServer) handle(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	w.Header().Set("Content-Type", "text/html")
	RenderHTML(w, ParseCallback(params))

	// Only the first redirect counts.
	select {
	case s.params <- params:
	default:
	}
}

// URL returns the redirect URL to hand to the identity provider.
func (s *CallbackServer) URL() string {
	return fmt.Sprintf("http://localhost:%d%s", s.port, CallbackPath)
}

// Wait blocks until a redirect arrives, the timeout elapses or ctx is done.
func (s *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (url.Values, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case params := <-s.params:
		return params, nil
	case err := <-s.errs:
		return nil, err
	case <-timer.C:
		return nil, ErrCallbackTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close shuts the server down.
func (s *CallbackServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// findAvailablePort tries MaxPortAttempts ports starting from start.
// A start of 0 lets the OS pick.
func findAvailablePort(start int) (int, net.Listener, error) {
	for i := 0; i < MaxPortAttempts; i++ {
		port := start + i
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return listener.Addr().(*net.TCPAddr).Port, listener, nil
		}
	}
	return 0, nil, fmt.Errorf("could not bind to local port for OAuth callback")
}
