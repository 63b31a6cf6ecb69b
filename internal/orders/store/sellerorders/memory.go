package sellerorders

import (
	"context"
	"sort"
	"sync"
	"time"

	"karigari/internal/orders/models"
	id "karigari/pkg/domain"
	dErrors "karigari/pkg/domain-errors"
)

// InMemoryStore keeps child orders keyed by child id. Used in tests and
// when no database is configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	orders map[id.SellerOrderID]*models.SellerOrder
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{orders: make(map[id.SellerOrderID]*models.SellerOrder)}
}

// Upsert writes the child order, replacing any existing record with the
// same child id. Re-running a checkout for the same parent therefore
// converges instead of duplicating.
func (s *InMemoryStore) Upsert(_ context.Context, order *models.SellerOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := copyOrder(order)
	s.orders[order.ChildID] = cp
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, childID id.SellerOrderID) (*models.SellerOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[childID]
	if !ok {
		return nil, nil
	}
	return copyOrder(order), nil
}

// ListBySeller returns the seller's child orders, newest first.
func (s *InMemoryStore) ListBySeller(_ context.Context, sellerID id.UserID) ([]*models.SellerOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.SellerOrder
	for _, order := range s.orders {
		if order.SellerID == sellerID {
			out = append(out, copyOrder(order))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ListByParent returns every child spawned by one checkout.
func (s *InMemoryStore) ListByParent(_ context.Context, parentID id.OrderID) ([]*models.SellerOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.SellerOrder
	for _, order := range s.orders {
		if order.ParentOrderID == parentID {
			out = append(out, copyOrder(order))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SellerID < out[j].SellerID
	})
	return out, nil
}

// UpdateStatus persists a new status for the child. The caller validates
// the transition; the store only records it.
func (s *InMemoryStore) UpdateStatus(_ context.Context, childID id.SellerOrderID, status models.Status, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[childID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "seller order not found")
	}
	order.Status = status
	order.UpdatedAt = updatedAt
	return nil
}

func copyOrder(o *models.SellerOrder) *models.SellerOrder {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp
}
