package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory with lazy TTL expiry.
// Suitable for tests and single-instance development runs.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int64]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore constructs an in-memory Store with the given session TTL.
// A non-positive ttl disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the session for a user. Expired entries are evicted and
// reported as absent.
func (m *MemoryStore) Get(_ context.Context, userID int64) (*Session, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[userID]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; another goroutine may have refreshed it.
		if cur, still := m.entries[userID]; still && !cur.expiresAt.IsZero() && m.now().After(cur.expiresAt) {
			delete(m.entries, userID)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return entry.session, true, nil
}

// Put stores the session, replacing any prior one and resetting its TTL.
func (m *MemoryStore) Put(_ context.Context, userID int64, s *Session) error {
	var expires time.Time
	if m.ttl > 0 {
		expires = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.entries[userID] = memoryEntry{session: s, expiresAt: expires}
	m.mu.Unlock()
	return nil
}

// Delete removes the session for a user. Deleting a missing session is a no-op.
func (m *MemoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.entries, userID)
	m.mu.Unlock()
	return nil
}
