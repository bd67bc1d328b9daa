// Package query is a small keyed cache for server reads. Entries go stale after
// a per-query duration, failed fetches are retried a fixed number of times,
// concurrent fetches of one key share a single request, and mutations
// invalidate entries by key prefix.
package query

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrDisabled is returned by Fetch when the query is not enabled.
var ErrDisabled = errors.New("query disabled")

// Key identifies a cached resource, e.g. {"all-tasks", workspaceID}.
type Key []string

func (k Key) String() string {
	return strings.Join(k, "\x00")
}

// HasPrefix reports whether k starts with every element of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Options controls a single Fetch.
type Options struct {
	// StaleTime is how long a successful result is served without refetching.
	StaleTime time.Duration

	// Retry is the number of additional attempts after a failed fetch.
	Retry int

	// RetryDelay returns the wait before retry attempt n (0-based).
	// Nil means DefaultRetryDelay.
	RetryDelay func(attempt int) time.Duration

	// Enabled gates the query; a disabled query never fetches.
	Enabled bool
}

// DefaultRetryDelay doubles from one second, capped at 30 seconds.
func DefaultRetryDelay(attempt int) time.Duration {
	d := time.Second << attempt
	if d <= 0 || d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}

type entry struct {
	key       Key
	value     any
	updatedAt time.Time
	invalid   bool
}

// flight is a fetch in progress. stale is set when the key is invalidated
// before the fetch stores its result.
type flight struct {
	key   Key
	stale bool
}

type observer struct {
	key Key
	fn  func()
}

// Client holds cached query results.
type Client struct {
	mu        sync.Mutex
	entries   map[string]*entry
	inflight  map[string]*flight
	observers map[int]observer
	nextID    int
	group     singleflight.Group
	now       func() time.Time
	log       *zap.Logger
}

// NewClient creates an empty cache.
func NewClient(log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		entries:   make(map[string]*entry),
		inflight:  make(map[string]*flight),
		observers: make(map[int]observer),
		now:       time.Now,
		log:       log,
	}
}

// SetClock replaces the time source (for testing).
func (c *Client) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Fetch returns the cached value for key while it is fresh, and otherwise runs
// fn (deduplicated per key, retried per opts) and caches its result.
func Fetch[T any](ctx context.Context, c *Client, key Key, opts Options, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if !opts.Enabled {
		return zero, ErrDisabled
	}

	if v, ok := c.fresh(key, opts.StaleTime); ok {
		if t, ok := v.(T); ok {
			c.log.Debug("query cache hit", zap.Strings("key", key))
			return t, nil
		}
	}

	v, err, shared := c.group.Do(key.String(), func() (any, error) {
		f := c.begin(key)
		val, err := c.run(ctx, key, opts, func(ctx context.Context) (any, error) {
			return fn(ctx)
		})
		if err != nil {
			c.finish(f, nil, false)
			return nil, err
		}
		c.finish(f, val, true)
		return val, nil
	})
	if shared {
		c.log.Debug("query shared in-flight fetch", zap.Strings("key", key))
	}
	if err != nil {
		return zero, err
	}
	t, _ := v.(T)
	return t, nil
}

func (c *Client) run(ctx context.Context, key Key, opts Options, fn func(context.Context) (any, error)) (any, error) {
	delayFn := opts.RetryDelay
	if delayFn == nil {
		delayFn = DefaultRetryDelay
	}

	for attempt := 0; ; attempt++ {
		c.log.Debug("query fetch", zap.Strings("key", key), zap.Int("attempt", attempt+1))
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		if attempt >= opts.Retry || ctx.Err() != nil {
			return nil, err
		}

		delay := delayFn(attempt)
		c.log.Debug("query retry", zap.Strings("key", key), zap.Duration("delay", delay), zap.Error(err))
		if delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, err
		}
	}
}

func (c *Client) fresh(key Key, staleTime time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok || e.invalid {
		return nil, false
	}
	if c.now().Sub(e.updatedAt) >= staleTime {
		return nil, false
	}
	return e.value, true
}

func (c *Client) begin(key Key) *flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := &flight{key: append(Key(nil), key...)}
	c.inflight[key.String()] = f
	return f
}

// finish ends f and, when ok, stores value. A result whose key was
// invalidated mid-flight is stored already stale.
func (c *Client) finish(f *flight, value any, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[f.key.String()] == f {
		delete(c.inflight, f.key.String())
	}
	if !ok {
		return
	}
	if f.stale {
		c.log.Debug("query result invalidated in flight", zap.Strings("key", f.key))
	}
	c.entries[f.key.String()] = &entry{
		key:       f.key,
		value:     value,
		updatedAt: c.now(),
		invalid:   f.stale,
	}
}

// Invalidate marks every entry under prefix stale and notifies observers whose
// key overlaps prefix.
func (c *Client) Invalidate(prefix Key) {
	c.mu.Lock()
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.invalid = true
		}
	}
	for _, f := range c.inflight {
		if f.key.HasPrefix(prefix) {
			f.stale = true
		}
	}
	var fire []func()
	for _, o := range c.observers {
		if o.key.HasPrefix(prefix) || prefix.HasPrefix(o.key) {
			fire = append(fire, o.fn)
		}
	}
	c.mu.Unlock()

	c.log.Debug("query invalidated", zap.Strings("prefix", prefix), zap.Int("observers", len(fire)))
	for _, fn := range fire {
		fn()
	}
}

// Subscribe registers fn to run whenever a key overlapping key is invalidated.
// The returned function removes the subscription.
func (c *Client) Subscribe(key Key, fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.observers[id] = observer{key: append(Key(nil), key...), fn: fn}

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Clear drops every cached entry.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	for _, f := range c.inflight {
		f.stale = true
	}
}
