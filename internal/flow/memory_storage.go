package flow

import (
	"context"
	"sync"
)

// MemoryStorage is an in-process Storage implementation used when Redis is
// not configured, and by tests.
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStorage initializes an empty in-memory Storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{sessions: make(map[string]Session)}
}

// GetSession returns the stored snapshot or ErrSessionNotFound when absent.
func (s *MemoryStorage) GetSession(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := sess
	return &copied, nil
}

// SetSession saves a copy of the snapshot.
func (s *MemoryStorage) SetSession(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *sess
	copied.Progress = nil
	copied.CardEntry = nil
	s.sessions[sess.ID] = copied

	return nil
}

// ClearSession removes the stored snapshot for the given session.
func (s *MemoryStorage) ClearSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// ListSessions returns every stored snapshot.
func (s *MemoryStorage) ListSessions(_ context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		copied := sess
		result = append(result, &copied)
	}

	return result, nil
}
