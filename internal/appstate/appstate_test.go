package appstate

import (
	"sync"
	"testing"
)

func TestState_LockUnlock(t *testing.T) {
	state := New()

	if state.IsLocked() {
		t.Fatal("Expected new state to be unlocked")
	}

	state.Lock("assembly period")
	if !state.IsLocked() {
		t.Fatal("Expected state to be locked")
	}

	status := state.Status()
	if !status.Locked || status.Reason != "assembly period" {
		t.Errorf("Unexpected status: %+v", status)
	}
	if status.LockedAt == nil {
		t.Error("Expected locked_at to be set while locked")
	}

	state.Unlock()
	if state.IsLocked() {
		t.Fatal("Expected state to be unlocked after Unlock")
	}

	status = state.Status()
	if status.Locked || status.Reason != "" || status.LockedAt != nil {
		t.Errorf("Expected cleared status, got %+v", status)
	}
}

func TestState_RelockReplacesReason(t *testing.T) {
	state := New()

	state.Lock("first reason")
	state.Lock("second reason")

	status := state.Status()
	if status.Reason != "second reason" {
		t.Errorf("Expected re-lock to replace reason, got %q", status.Reason)
	}
}

func TestState_ConcurrentAccess(t *testing.T) {
	state := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			state.Lock("busy")
		}()
		go func() {
			defer wg.Done()
			_ = state.Status()
		}()
	}
	wg.Wait()

	if !state.IsLocked() {
		t.Error("Expected state locked after concurrent locking")
	}
}
