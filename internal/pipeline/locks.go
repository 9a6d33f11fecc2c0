package pipeline

import "sync"

// LockRegistry hands out named advisory locks. The pipeline locks per brief
// id; the regeneration controller shares the registry and locks per unit key
// so same-unit regenerations serialize.
type LockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLockRegistry returns an empty registry.
func NewLockRegistry() *LockRegistry {
	return &LockRegistry{locks: make(map[string]*sync.Mutex)}
}

func (r *LockRegistry) lockFor(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	return l
}

// TryAcquire attempts to take the named lock without blocking. On success it
// returns a release func and true; when the lock is already held it returns
// false.
func (r *LockRegistry) TryAcquire(key string) (func(), bool) {
	l := r.lockFor(key)
	if !l.TryLock() {
		return nil, false
	}
	return l.Unlock, true
}

// Acquire blocks until the named lock is held and returns its release func.
func (r *LockRegistry) Acquire(key string) func() {
	l := r.lockFor(key)
	l.Lock()
	return l.Unlock
}
