package buyerorders

import (
	"context"
	"sort"
	"sync"

	"karigari/internal/orders/models"
	id "karigari/pkg/domain"
)

// InMemoryStore keeps parent orders keyed by order id.
type InMemoryStore struct {
	mu     sync.RWMutex
	orders map[id.OrderID]*models.BuyerOrder
}

func NewMemory() *InMemoryStore {
	return &InMemoryStore{orders: make(map[id.OrderID]*models.BuyerOrder)}
}

func (s *InMemoryStore) Put(_ context.Context, order *models.BuyerOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[order.OrderID] = copyOrder(order)
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, orderID id.OrderID) (*models.BuyerOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, nil
	}
	return copyOrder(order), nil
}

// ListByBuyer returns the buyer's orders, newest first.
func (s *InMemoryStore) ListByBuyer(_ context.Context, buyerID id.UserID) ([]*models.BuyerOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.BuyerOrder
	for _, order := range s.orders {
		if order.BuyerID == buyerID {
			out = append(out, copyOrder(order))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func copyOrder(o *models.BuyerOrder) *models.BuyerOrder {
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	return &cp
}
