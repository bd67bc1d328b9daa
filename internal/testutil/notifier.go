package testutil

import (
	"sync"

	"teamsync/internal/output"
)

// Recorder is an output.Notifier that keeps every notice.
type Recorder struct {
	mu      sync.Mutex
	notices []output.Notice
}

// Notify implements output.Notifier.
func (r *Recorder) Notify(n output.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns the recorded notices in order.
func (r *Recorder) Notices() []output.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]output.Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice, if any.
func (r *Recorder) Last() (output.Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return output.Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}
