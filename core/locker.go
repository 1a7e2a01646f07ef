package core

import (
	"sync"
	"time"
)

const defaultLockTTL = 5 * time.Minute

// MemoryWorkItemLocker serializes sync runs per work item with in-process TTL
// locks. The TTL bounds how long a crashed run can hold a lock. Each
// acquisition gets a generation token so a handle whose TTL lapsed cannot
// release the lock of the run that took over.
type MemoryWorkItemLocker struct {
	mu    sync.Mutex
	locks map[string]memoryLock
	nowFn func() time.Time
}

type memoryLock struct {
	until      time.Time
	generation uint64
}

func NewMemoryWorkItemLocker() *MemoryWorkItemLocker {
	return &MemoryWorkItemLocker{
		locks: make(map[string]memoryLock),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

func (l *MemoryWorkItemLocker) Acquire(ref WorkItemRef, ttl time.Duration) (LockHandle, bool) {
	if l == nil {
		return nil, false
	}
	key := ref.String()
	if key == "" {
		return nil, false
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	now := l.nowFn()
	l.mu.Lock()
	defer l.mu.Unlock()

	current, held := l.locks[key]
	if held && now.Before(current.until) {
		return nil, false
	}
	next := memoryLock{until: now.Add(ttl), generation: current.generation + 1}
	l.locks[key] = next
	return &memoryLockHandle{locker: l, key: key, generation: next.generation}, true
}

type memoryLockHandle struct {
	locker     *MemoryWorkItemLocker
	key        string
	generation uint64
	once       sync.Once
}

func (h *memoryLockHandle) Unlock() {
	if h == nil || h.locker == nil {
		return
	}
	h.once.Do(func() {
		h.locker.mu.Lock()
		if current, ok := h.locker.locks[h.key]; ok && current.generation == h.generation {
			delete(h.locker.locks, h.key)
		}
		h.locker.mu.Unlock()
	})
}

var _ WorkItemLocker = (*MemoryWorkItemLocker)(nil)
var _ LockHandle = (*memoryLockHandle)(nil)
