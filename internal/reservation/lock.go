package reservation

import "sync"

// KeyedMutex provides one mutex per resource id, created on first use.
// It scopes the coordinator's check-then-commit critical sections to a
// single resource instead of a global lock.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *KeyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	m := k.get(key)
	m.Lock()
	return m.Unlock
}

// LockScope acquires the locks guarding a resource's conflict scope.
// For equipment the parent lab's key is always taken first, so a lab-level
// operation and an equipment-level operation racing on the same lab
// serialize instead of deadlocking. Returns the unlock function (reverse
// order).
func (k *KeyedMutex) LockScope(resourceID, parentLabID string) func() {
	if parentLabID == "" || parentLabID == resourceID {
		return k.Lock(resourceID)
	}
	unlockLab := k.Lock(parentLabID)
	unlockRes := k.Lock(resourceID)
	return func() {
		unlockRes()
		unlockLab()
	}
}
