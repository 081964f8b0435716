package session

import (
	"context"
	"sync"
	"time"

	"sangkhep/internal/domain"
)

// Store persists sessions. Get returns domain.ErrSessionNotFound for
// unknown IDs.
type Store interface {
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	SaveSession(ctx context.Context, s *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteIdleSessions(ctx context.Context, idleSince time.Time) (int64, error)
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]domain.Session)}
}

func (m *MemoryStore) GetSession(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	return &s, nil
}

func (m *MemoryStore) SaveSession(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ID] = *s

	return nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)

	return nil
}

func (m *MemoryStore) DeleteIdleSessions(_ context.Context, idleSince time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(idleSince) {
			delete(m.sessions, id)
			deleted++
		}
	}

	return deleted, nil
}
