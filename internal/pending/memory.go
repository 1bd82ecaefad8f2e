package pending

import (
	"context"
	"sync"
	"time"

	"github.com/roach88/presensi/internal/clock"
)

// MemoryStore keeps pending requests in process memory.
// Pending state does not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   clock.Clock
	entries map[string]time.Time // userID -> deadline (zero = never)
}

// NewMemoryStore creates an empty store. A zero ttl disables expiry.
// A nil clock uses the system clock.
func NewMemoryStore(ttl time.Duration, c clock.Clock) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		clock:   clock.Or(c),
		entries: make(map[string]time.Time),
	}
}

// Add implements Store.
func (m *MemoryStore) Add(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deadline time.Time
	if m.ttl > 0 {
		deadline = m.clock.Now().Add(m.ttl)
	}
	m.entries[userID] = deadline
	return nil
}

// Take implements Store.
func (m *MemoryStore) Take(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ok := m.liveLocked(userID)
	delete(m.entries, userID)
	return ok, nil
}

// Contains implements Store.
func (m *MemoryStore) Contains(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ok := m.liveLocked(userID)
	if !ok {
		delete(m.entries, userID)
	}
	return ok, nil
}

// Len returns the number of unexpired pending requests.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id := range m.entries {
		if m.liveLocked(id) {
			n++
		}
	}
	return n
}

// liveLocked reports whether userID is present and unexpired.
// Caller must hold m.mu.
func (m *MemoryStore) liveLocked(userID string) bool {
	deadline, ok := m.entries[userID]
	if !ok {
		return false
	}
	return deadline.IsZero() || m.clock.Now().Before(deadline)
}
