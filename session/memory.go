package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore holds sessions in RAM. Suitable for a single-process
// deployment where losing sessions on restart is acceptable; also the
// backend used by tests. Expired records are dropped lazily on Get and
// in bulk by PurgeExpired.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Record
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]*Record{}}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(rec.ExpiresAt) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}

	out := *rec
	out.Values = cloneValues(rec.Values)
	out.dirty = false
	return &out, nil
}

func (m *MemoryStore) Put(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *rec
	stored.Values = cloneValues(rec.Values)
	stored.dirty = false
	m.sessions[rec.ID] = &stored
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Renew(_ context.Context, id string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	rec.ExpiresAt = expiresAt
	return nil
}

// PurgeExpired drops every expired session. Run it periodically; Get
// already ignores expired records, this just bounds memory.
func (m *MemoryStore) PurgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	purged := 0
	for id, rec := range m.sessions {
		if now.After(rec.ExpiresAt) {
			delete(m.sessions, id)
			purged++
		}
	}
	return purged
}

func cloneValues(values map[string]string) map[string]string {
	if values == nil {
		return nil
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
