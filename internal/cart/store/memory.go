package store

import (
	"context"
	"sync"

	"karigari/internal/cart/models"
	id "karigari/pkg/domain"
)

// InMemoryStore keeps carts in a map. It is the unit-test double for the
// Redis store and shares its contract: Get returns nil for an absent cart.
type InMemoryStore struct {
	mu    sync.RWMutex
	carts map[id.UserID]*models.Cart
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{carts: make(map[id.UserID]*models.Cart)}
}

func (s *InMemoryStore) Get(_ context.Context, buyerID id.UserID) (*models.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, exists := s.carts[buyerID]
	if !exists {
		return nil, nil
	}
	cp := *cart
	cp.Items = append([]models.CartItem(nil), cart.Items...)
	return &cp, nil
}

func (s *InMemoryStore) Put(_ context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *cart
	cp.Items = append([]models.CartItem(nil), cart.Items...)
	s.carts[cp.BuyerID] = &cp
	return nil
}
