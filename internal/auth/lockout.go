package auth

import (
	"sync"
	"time"
)

const (
	lockoutThreshold = 5
	lockoutWindow    = 15 * time.Minute
	lockoutDuration  = 10 * time.Minute
)

type attemptState struct {
	failures    []time.Time
	lockedUntil time.Time
}

// LockoutTracker throttles repeated failed logins per login key. Five
// failures inside a fifteen minute window lock the key for ten
// minutes. State is in memory; a restart clears it.
type LockoutTracker struct {
	mu    sync.Mutex
	now   func() time.Time
	users map[string]*attemptState
}

// NewLockoutTracker constructs a tracker. The now func may be nil.
func NewLockoutTracker(now func() time.Time) *LockoutTracker {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &LockoutTracker{now: now, users: make(map[string]*attemptState)}
}

// Locked reports whether the key is currently locked out and, if so,
// for how much longer.
func (t *LockoutTracker) Locked(key string) (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.users[key]
	if !ok {
		return false, 0
	}
	now := t.now()
	if now.Before(state.lockedUntil) {
		return true, state.lockedUntil.Sub(now)
	}
	return false, 0
}

// RecordFailure registers one failed attempt and returns true if the
// key is now locked out.
func (t *LockoutTracker) RecordFailure(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	state, ok := t.users[key]
	if !ok {
		state = &attemptState{}
		t.users[key] = state
	}

	cutoff := now.Add(-lockoutWindow)
	kept := state.failures[:0]
	for _, failedAt := range state.failures {
		if failedAt.After(cutoff) {
			kept = append(kept, failedAt)
		}
	}
	state.failures = append(kept, now)

	if len(state.failures) >= lockoutThreshold {
		state.lockedUntil = now.Add(lockoutDuration)
		state.failures = nil
		return true
	}
	return false
}

// RecordSuccess clears failure state for the key.
func (t *LockoutTracker) RecordSuccess(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.users, key)
}
