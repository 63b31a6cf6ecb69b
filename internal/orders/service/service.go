package service

import (
	"context"
	"log/slog"
	"time"

	"karigari/internal/events"
	"karigari/internal/orders/models"
	"karigari/internal/platform/metrics"
	id "karigari/pkg/domain"
	dErrors "karigari/pkg/domain-errors"
)

// SellerOrderStore is the persistence contract for per-seller child orders.
type SellerOrderStore interface {
	Get(ctx context.Context, childID id.SellerOrderID) (*models.SellerOrder, error)
	ListBySeller(ctx context.Context, sellerID id.UserID) ([]*models.SellerOrder, error)
	ListByParent(ctx context.Context, parentID id.OrderID) ([]*models.SellerOrder, error)
	UpdateStatus(ctx context.Context, childID id.SellerOrderID, status models.Status, updatedAt time.Time) error
}

// BuyerOrderStore is the persistence contract for parent orders.
type BuyerOrderStore interface {
	Get(ctx context.Context, orderID id.OrderID) (*models.BuyerOrder, error)
	ListByBuyer(ctx context.Context, buyerID id.UserID) ([]*models.BuyerOrder, error)
}

// Service serves order reads for both sides of the marketplace and owns the
// seller-driven status lifecycle. The buyer-visible status is always derived
// from the children at read time.
type Service struct {
	sellerOrders SellerOrderStore
	buyerOrders  BuyerOrderStore
	publisher    events.Publisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithClock fixes the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(sellerOrders SellerOrderStore, buyerOrders BuyerOrderStore, opts ...Option) (*Service, error) {
	if sellerOrders == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "seller order store is required")
	}
	if buyerOrders == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "buyer order store is required")
	}
	s := &Service{
		sellerOrders: sellerOrders,
		buyerOrders:  buyerOrders,
		publisher:    events.Nop{},
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SellerOrderList is a seller's dashboard payload: the orders plus how many
// sit in each status.
type SellerOrderList struct {
	Orders       []*models.SellerOrder `json:"orders"`
	StatusCounts map[models.Status]int `json:"status_counts"`
}

// ListSellerOrders returns the seller's child orders, newest first.
func (s *Service) ListSellerOrders(ctx context.Context, sellerID id.UserID) (*SellerOrderList, error) {
	orders, err := s.sellerOrders.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list seller orders")
	}
	counts := make(map[models.Status]int, len(orders))
	for _, order := range orders {
		counts[order.Status]++
	}
	return &SellerOrderList{Orders: orders, StatusCounts: counts}, nil
}

// UpdateStatus moves one child order to the next lifecycle stage. Only the
// owning seller may do it, and only along an allowed transition. The parent
// order is never touched; buyers observe the change through the derived
// overall status.
func (s *Service) UpdateStatus(ctx context.Context, actorID id.UserID, childID id.SellerOrderID, to models.Status) (*models.SellerOrder, error) {
	if !to.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown order status").WithDetails(map[string]any{
			"status": string(to),
		})
	}

	order, err := s.sellerOrders.Get(ctx, childID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load seller order")
	}
	if order == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "seller order not found")
	}
	if order.SellerID != actorID {
		return nil, dErrors.New(dErrors.CodeForbidden, "order belongs to another seller")
	}
	if !models.CanTransition(order.Status, to) {
		return nil, dErrors.New(dErrors.CodeConflict, "status transition not allowed").WithDetails(map[string]any{
			"from": string(order.Status),
			"to":   string(to),
		})
	}

	now := s.now().UTC()
	if err := s.sellerOrders.UpdateStatus(ctx, childID, to, now); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "update seller order status")
	}

	from := order.Status
	order.Status = to
	order.UpdatedAt = now

	if s.metrics != nil {
		s.metrics.IncrementStatusTransition(string(to))
	}
	if err := s.publisher.Publish(ctx, events.TypeOrderStatusChange, order.BuyerID.String(), events.OrderStatusChanged{
		ChildID:       order.ChildID.String(),
		ParentOrderID: order.ParentOrderID.String(),
		SellerID:      order.SellerID.String(),
		BuyerID:       order.BuyerID.String(),
		From:          string(from),
		To:            string(to),
	}); err != nil {
		s.logger.Warn("status change event not published", "child_id", order.ChildID, "error", err)
	}

	s.logger.Info("seller order status updated",
		"child_id", order.ChildID, "seller_id", order.SellerID, "from", from, "to", to)
	return order, nil
}

// GetBuyerOrder returns the parent order with its derived overall status and
// the per-seller breakdown.
func (s *Service) GetBuyerOrder(ctx context.Context, buyerID id.UserID, orderID id.OrderID) (*models.BuyerOrderView, error) {
	order, err := s.buyerOrders.Get(ctx, orderID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load buyer order")
	}
	if order == nil || order.BuyerID != buyerID {
		return nil, dErrors.New(dErrors.CodeNotFound, "order not found")
	}
	return s.view(ctx, order)
}

// BuyerOrderList is a buyer's history: the orders, newest first, plus how
// many sit in each derived overall status.
type BuyerOrderList struct {
	Orders       []*models.BuyerOrderView `json:"orders"`
	StatusCounts map[models.Status]int    `json:"status_counts"`
}

// ListBuyerOrders returns the buyer's orders, newest first, each with its
// derived overall status.
func (s *Service) ListBuyerOrders(ctx context.Context, buyerID id.UserID) (*BuyerOrderList, error) {
	orders, err := s.buyerOrders.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list buyer orders")
	}
	views := make([]*models.BuyerOrderView, 0, len(orders))
	counts := make(map[models.Status]int, len(orders))
	for _, order := range orders {
		v, err := s.view(ctx, order)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
		counts[v.OverallStatus]++
	}
	return &BuyerOrderList{Orders: views, StatusCounts: counts}, nil
}

func (s *Service) view(ctx context.Context, order *models.BuyerOrder) (*models.BuyerOrderView, error) {
	children, err := s.sellerOrders.ListByParent(ctx, order.OrderID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load child orders")
	}

	statuses := make([]models.Status, 0, len(children))
	details := make([]models.SellerStatusDetail, 0, len(children))
	for _, child := range children {
		statuses = append(statuses, child.Status)
		details = append(details, models.SellerStatusDetail{
			SellerID: child.SellerID,
			Status:   child.Status,
			Items:    child.Items,
			Summary:  child.Summary,
		})
	}
	return &models.BuyerOrderView{
		BuyerOrder:    *order,
		OverallStatus: models.OverallStatus(statuses),
		StatusDetails: details,
	}, nil
}
