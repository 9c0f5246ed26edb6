// Package reposync tracks the shared, RWMutex-guarded view of the
// repository's last-known-good commit, last refresh time, last error,
// and consecutive failure count — the state the refresh scheduler
// updates and the HTTP health endpoint reads.
package reposync

import (
	"sync"
	"time"
)

// State is the repository's observable sync status.
type State struct {
	mu sync.RWMutex

	commit       string
	hasCommit    bool
	lastRefresh  time.Time
	hasRefresh   bool
	lastError    string
	hasError     bool
	failureCount uint32
}

// New returns a fresh State with no commit recorded yet.
func New() *State {
	return &State{}
}

// RecordSuccess records a successful refresh: sets commit, stamps
// lastRefresh, clears any prior error, and resets failureCount to 0.
func (s *State) RecordSuccess(commit string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit = commit
	s.hasCommit = true
	s.lastRefresh = at
	s.hasRefresh = true
	s.lastError = ""
	s.hasError = false
	s.failureCount = 0
}

// RecordFailure records a failed refresh attempt: stores the error and
// increments failureCount. The commit pointer is left untouched.
func (s *State) RecordFailure(errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = errMsg
	s.hasError = true
	s.failureCount++
}

// Commit returns the last known-good commit SHA, if any.
func (s *State) Commit() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commit, s.hasCommit
}

// LastRefresh returns the timestamp of the last successful refresh.
func (s *State) LastRefresh() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh, s.hasRefresh
}

// LastError returns the most recently recorded failure message.
func (s *State) LastError() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError, s.hasError
}

// FailureCount returns the number of consecutive failed refreshes since
// the last success.
func (s *State) FailureCount() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failureCount
}

// IsHealthy reports whether a commit has been recorded and no error is
// currently outstanding.
func (s *State) IsHealthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasCommit && !s.hasError
}
