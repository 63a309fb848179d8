package session

import "sync"

type userLock struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex serializes the read-decide-write cycle on one user's session.
// Locks for different users never contend, and entries are dropped once
// the last holder releases them.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

// NewKeyedMutex returns an empty per-user lock set.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[int64]*userLock)}
}

// Lock acquires the lock for userID and returns the matching unlock func.
func (k *KeyedMutex) Lock(userID int64) func() {
	k.mu.Lock()
	l, ok := k.locks[userID]
	if !ok {
		l = &userLock{}
		k.locks[userID] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, userID)
		}
		k.mu.Unlock()
	}
}
