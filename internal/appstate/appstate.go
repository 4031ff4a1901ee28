package appstate

import (
	"sync"
	"time"
)

// State holds process-wide flags shared by request handlers. It is injected
// where needed and only mutated through its transition methods.
type State struct {
	mu         sync.RWMutex
	locked     bool
	lockReason string
	lockedAt   time.Time
}

// LockStatus is the read snapshot handed to clients.
type LockStatus struct {
	Locked   bool       `json:"locked"`
	Reason   string     `json:"reason,omitempty"`
	LockedAt *time.Time `json:"locked_at,omitempty"`
}

func New() *State {
	return &State{}
}

// Lock engages the screen lock for all users. Re-locking replaces the reason.
func (s *State) Lock(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.locked = true
	s.lockReason = reason
	s.lockedAt = time.Now()
}

// Unlock clears the screen lock for all users.
func (s *State) Unlock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.locked = false
	s.lockReason = ""
	s.lockedAt = time.Time{}
}

// Status returns a consistent snapshot of the lock state.
func (s *State) Status() LockStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := LockStatus{Locked: s.locked, Reason: s.lockReason}
	if s.locked {
		at := s.lockedAt
		status.LockedAt = &at
	}
	return status
}

// IsLocked reports whether the screen lock is engaged.
func (s *State) IsLocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locked
}
