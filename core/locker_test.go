package core

import (
	"testing"
	"time"
)

func TestMemoryWorkItemLockerSerializes(t *testing.T) {
	locker := NewMemoryWorkItemLocker()
	ref := WorkItemRef{ID: "wi-1"}

	handle, ok := locker.Acquire(ref, time.Minute)
	if !ok {
		t.Fatalf("first acquire should succeed")
	}

	if _, ok := locker.Acquire(ref, time.Minute); ok {
		t.Fatalf("second acquire should be rejected while lock held")
	}

	other, ok := locker.Acquire(WorkItemRef{ID: "wi-2"}, time.Minute)
	if !ok {
		t.Fatalf("distinct work item should lock independently")
	}
	other.Unlock()

	handle.Unlock()
	handle.Unlock() // idempotent

	if _, ok := locker.Acquire(ref, time.Minute); !ok {
		t.Fatalf("acquire after unlock should succeed")
	}
}

func TestMemoryWorkItemLockerTTLExpiry(t *testing.T) {
	locker := NewMemoryWorkItemLocker()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	locker.nowFn = func() time.Time { return current }

	ref := WorkItemRef{ID: "wi-1"}
	if _, ok := locker.Acquire(ref, time.Minute); !ok {
		t.Fatalf("first acquire should succeed")
	}

	current = current.Add(30 * time.Second)
	if _, ok := locker.Acquire(ref, time.Minute); ok {
		t.Fatalf("lock should still be held before TTL expiry")
	}

	current = current.Add(31 * time.Second)
	if _, ok := locker.Acquire(ref, time.Minute); !ok {
		t.Fatalf("expired lock should be reacquirable")
	}
}

func TestMemoryWorkItemLockerStaleHandleCannotReleaseSuccessor(t *testing.T) {
	locker := NewMemoryWorkItemLocker()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	locker.nowFn = func() time.Time { return current }

	ref := WorkItemRef{ID: "wi-1"}
	stale, ok := locker.Acquire(ref, time.Minute)
	if !ok {
		t.Fatalf("first acquire should succeed")
	}

	current = current.Add(2 * time.Minute)
	successor, ok := locker.Acquire(ref, time.Minute)
	if !ok {
		t.Fatalf("expired lock should be reacquirable")
	}

	stale.Unlock()
	if _, ok := locker.Acquire(ref, time.Minute); ok {
		t.Fatalf("stale handle must not release the successor's lock")
	}

	successor.Unlock()
	if _, ok := locker.Acquire(ref, time.Minute); !ok {
		t.Fatalf("successor unlock should release the lock")
	}
}

func TestMemoryWorkItemLockerRejectsEmptyRef(t *testing.T) {
	locker := NewMemoryWorkItemLocker()
	if _, ok := locker.Acquire(WorkItemRef{}, time.Minute); ok {
		t.Fatalf("empty ref must not lock")
	}
}
