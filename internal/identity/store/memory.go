package store

import (
	"context"
	"sync"

	"karigari/internal/identity/models"
	id "karigari/pkg/domain"
)

// InMemoryStore keeps the user directory in a map. It backs unit tests and
// local development; the Postgres store is the production implementation.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[id.UserID]*models.User
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{users: make(map[id.UserID]*models.User)}
}

// Get returns the user or nil when the id is unknown.
func (s *InMemoryStore) Get(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, exists := s.users[userID]; exists {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

// Put inserts or replaces a user record.
func (s *InMemoryStore) Put(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *user
	s.users[cp.ID] = &cp
	return nil
}
