// Package session holds the persisted auth session: the access token and the
// workspace the user last navigated to.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/oauth2"
)

const (
	// StorageKey is the fixed key the session is persisted under.
	StorageKey = "teamsync-auth-storage"

	bucketName = "session"
)

// ErrNoToken is returned by Token when no access token is stored.
var ErrNoToken = errors.New("not logged in (run: teamsync login)")

// State is the persisted session state.
type State struct {
	AccessToken      string `json:"accessToken,omitempty"`
	CurrentWorkspace string `json:"currentWorkspace,omitempty"`
}

// envelope matches the persisted layout: the state plus a schema version.
type envelope struct {
	State   State `json:"state"`
	Version int   `json:"version"`
}

// Store holds the session in memory and, when opened from a file, writes
// every change through to bbolt.
type Store struct {
	mu    sync.RWMutex
	db    *bolt.DB
	state State
}

// Open opens (or creates) the session database at path and loads the stored state.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	s := &Store{db: db}
	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}
		raw := b.Get([]byte(StorageKey))
		if raw == nil {
			return nil
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			// A corrupt entry is treated as logged out.
			return b.Delete([]byte(StorageKey))
		}
		s.state = env.State
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return s, nil
}

// NewMemory returns a store that is never persisted.
func NewMemory() *Store {
	return &Store{}
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SetAccessToken stores token and persists it.
func (s *Store) SetAccessToken(token string) error {
	return s.update(func(st *State) { st.AccessToken = token })
}

// ClearAccessToken removes the token and persists the change.
func (s *Store) ClearAccessToken() error {
	return s.update(func(st *State) { st.AccessToken = "" })
}

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool {
	return s.AccessToken() != ""
}

// AccessToken returns the stored token or "".
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

// SetWorkspace records the current workspace.
func (s *Store) SetWorkspace(id string) error {
	return s.update(func(st *State) { st.CurrentWorkspace = id })
}

// Workspace returns the current workspace or "".
func (s *Store) Workspace() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.CurrentWorkspace
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token implements oauth2.TokenSource over the stored access token.
func (s *Store) Token() (*oauth2.Token, error) {
	token := s.AccessToken()
	if token == "" {
		return nil, ErrNoToken
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

func (s *Store) update(fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	fn(&next)

	if s.db != nil {
		payload, err := json.Marshal(envelope{State: next})
		if err != nil {
			return err
		}
		err = s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket([]byte(bucketName)).Put([]byte(StorageKey), payload)
		})
		if err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
	}

	s.state = next
	return nil
}

var _ oauth2.TokenSource = (*Store)(nil)
