package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"karigari/internal/catalog/models"
	id "karigari/pkg/domain"
)

// InMemoryStore keeps the catalog in a map for tests and local development.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[id.ProductID]*models.Product
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{products: make(map[id.ProductID]*models.Product)}
}

// Get returns the product or nil when the id is unknown.
func (s *InMemoryStore) Get(_ context.Context, productID id.ProductID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, exists := s.products[productID]; exists {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

// List returns every product, newest first. The reconciliation pass walks
// the full catalog, inactive records included.
func (s *InMemoryStore) List(_ context.Context) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Product, 0, len(s.products))
	for _, p := range s.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListActive returns buyer-visible products, newest first.
func (s *InMemoryStore) ListActive(ctx context.Context) ([]*models.Product, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, p := range all {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

// Put inserts or replaces a product record.
func (s *InMemoryStore) Put(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *product
	s.products[cp.ID] = &cp
	return nil
}

// SetSellerID backfills the canonical sellerId field. Only the reconciler
// calls this; the resolver itself never writes.
func (s *InMemoryStore) SetSellerID(_ context.Context, productID id.ProductID, sellerID id.UserID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, exists := s.products[productID]; exists {
		p.Identity.SellerID = sellerID.String()
		p.UpdatedAt = now
	}
	return nil
}
