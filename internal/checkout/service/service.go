// Package service implements checkout: one cart becomes one parent order
// plus one child order per seller. Child writes come first and are
// idempotent by child id; the parent write and the cart clear happen only
// after every child landed. There is no rollback, so a failed checkout can
// always be retried with the same order id and converge.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	cartmodels "karigari/internal/cart/models"
	"karigari/internal/events"
	identitymodels "karigari/internal/identity/models"
	ordersmodels "karigari/internal/orders/models"
	"karigari/internal/platform/metrics"
	id "karigari/pkg/domain"
	dErrors "karigari/pkg/domain-errors"
)

// CartAccess is the slice of the cart service checkout needs.
type CartAccess interface {
	Get(ctx context.Context, buyerID id.UserID) (*cartmodels.Cart, error)
	Clear(ctx context.Context, buyerID id.UserID) error
}

// Directory resolves buyers to their profile for the contact snapshot.
type Directory interface {
	Get(ctx context.Context, userID id.UserID) (*identitymodels.User, error)
}

// SellerOrderWriter persists child orders.
type SellerOrderWriter interface {
	Upsert(ctx context.Context, order *ordersmodels.SellerOrder) error
}

// BuyerOrderWriter persists parent orders.
type BuyerOrderWriter interface {
	Put(ctx context.Context, order *ordersmodels.BuyerOrder) error
}

// Input is one checkout request. OrderID is normally empty; a caller
// retrying a failed checkout passes the id it got back so the child writes
// converge instead of spawning a second order.
type Input struct {
	BuyerID         id.UserID
	OrderID         id.OrderID
	ShippingAddress string
}

// SkippedItem is a cart line excluded from the order because no seller
// could be attributed to it.
type SkippedItem struct {
	ProductID id.ProductID `json:"product_id"`
	Title     string       `json:"title"`
	Reason    string       `json:"reason"`
}

// Result is a successful checkout: the parent, its children, and any lines
// that were left out.
type Result struct {
	Order        *ordersmodels.BuyerOrder    `json:"order"`
	ChildOrders  []*ordersmodels.SellerOrder `json:"child_orders"`
	SkippedItems []SkippedItem               `json:"skipped_items,omitempty"`
}

type Service struct {
	carts        CartAccess
	directory    Directory
	sellerOrders SellerOrderWriter
	buyerOrders  BuyerOrderWriter
	publisher    events.Publisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string
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

// WithIDGenerator fixes the order id suffix source for tests.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

func New(carts CartAccess, directory Directory, sellerOrders SellerOrderWriter, buyerOrders BuyerOrderWriter, opts ...Option) (*Service, error) {
	if carts == nil || directory == nil || sellerOrders == nil || buyerOrders == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "checkout service requires cart, directory and order stores")
	}
	s := &Service{
		carts:        carts,
		directory:    directory,
		sellerOrders: sellerOrders,
		buyerOrders:  buyerOrders,
		publisher:    events.Nop{},
		logger:       slog.Default(),
		now:          time.Now,
		newID:        func() string { return uuid.NewString()[:8] },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Checkout fans one cart out into per-seller orders.
//
// Write order is the crux: children first, concurrently and idempotently,
// then the parent, then the cart clear. If any child write fails the parent
// is never written and the cart keeps its items, so the buyer sees the
// checkout as not having happened and can retry.
func (s *Service) Checkout(ctx context.Context, input Input) (*Result, error) {
	started := s.now()

	cart, err := s.carts.Get(ctx, input.BuyerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load cart")
	}
	if cart.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeValidation, "cart is empty")
	}

	groups, skipped := partition(cart.Items)
	if s.metrics != nil {
		s.metrics.CheckoutItemsSkipped.Add(float64(len(skipped)))
	}
	if len(groups) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "no item in the cart has a valid seller").WithDetails(map[string]any{
			"skipped": skipped,
		})
	}

	orderID := input.OrderID
	if orderID.IsEmpty() {
		orderID = id.OrderID(fmt.Sprintf("ORDER_%d_%s", started.UnixMilli(), s.newID()))
	}
	now := started.UTC()
	details := s.buyerDetails(ctx, input)

	children := make([]*ordersmodels.SellerOrder, 0, len(groups))
	for _, group := range groups {
		children = append(children, buildChild(orderID, input.BuyerID, details, group, now))
	}

	outcomes := s.writeChildren(ctx, children)
	if failed := failures(outcomes); len(failed) > 0 {
		if s.metrics != nil {
			s.metrics.CheckoutFailures.Inc()
		}
		s.logger.Error("checkout left partial state", "order_id", orderID, "failed_sellers", len(failed))
		return nil, dErrors.New(dErrors.CodeConflict, "some seller orders could not be created").WithDetails(map[string]any{
			"order_id": orderID.String(),
			"sellers":  failed,
		})
	}

	var kept []cartmodels.CartItem
	for _, group := range groups {
		kept = append(kept, group.items...)
	}
	totals := cartmodels.ComputeTotals(kept)

	parent := &ordersmodels.BuyerOrder{
		OrderID:      orderID,
		BuyerID:      input.BuyerID,
		BuyerDetails: details,
		Items:        orderItems(kept),
		Summary: ordersmodels.OrderSummary{
			ItemsCount:    len(kept),
			TotalQuantity: totals.TotalItems,
			Subtotal:      totals.Subtotal,
			PlatformFee:   totals.PlatformFee,
			DeliveryFee:   totals.DeliveryFee,
			Shipping:      totals.Shipping,
			Total:         totals.Total,
		},
		Status:            ordersmodels.StatusConfirmed,
		PaymentStatus:     ordersmodels.PaymentPaid,
		EstimatedDelivery: now.Add(deliveryLeadTime),
		CreatedAt:         now,
	}
	if err := s.buyerOrders.Put(ctx, parent); err != nil {
		if s.metrics != nil {
			s.metrics.CheckoutFailures.Inc()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "write parent order").WithDetails(map[string]any{
			"order_id": orderID.String(),
		})
	}

	// The order exists from here on. A failed clear leaves a stale cart,
	// which the buyer or the next checkout can recover from; it must not
	// fail the checkout.
	if err := s.carts.Clear(ctx, input.BuyerID); err != nil {
		s.logger.Warn("cart not cleared after checkout", "buyer_id", input.BuyerID, "error", err)
	}

	s.publishPlaced(ctx, parent, children)
	if s.metrics != nil {
		s.metrics.OrdersPlaced.Inc()
		s.metrics.SellerOrdersCreated.Add(float64(len(children)))
		s.metrics.ObserveCheckout(s.now().Sub(started))
	}
	s.logger.Info("order placed",
		"order_id", orderID, "buyer_id", input.BuyerID,
		"sellers", len(children), "skipped_items", len(skipped), "total", totals.Total)

	return &Result{Order: parent, ChildOrders: children, SkippedItems: skipped}, nil
}

// buyerDetails snapshots the buyer's contact info. The profile may be
// missing in degraded setups; checkout still goes through with whatever the
// request supplied.
func (s *Service) buyerDetails(ctx context.Context, input Input) ordersmodels.BuyerDetails {
	details := ordersmodels.BuyerDetails{Address: input.ShippingAddress}
	user, err := s.directory.Get(ctx, input.BuyerID)
	if err != nil {
		s.logger.Warn("buyer profile lookup failed", "buyer_id", input.BuyerID, "error", err)
		return details
	}
	if user == nil {
		return details
	}
	details.Name = user.Name
	details.Phone = user.Phone
	details.Email = user.Email
	if details.Address == "" {
		details.Address = user.Address
	}
	return details
}

func failures(outcomes map[id.UserID]error) map[string]string {
	failed := make(map[string]string)
	for sellerID, err := range outcomes {
		if err != nil {
			failed[sellerID.String()] = err.Error()
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return failed
}

func (s *Service) publishPlaced(ctx context.Context, parent *ordersmodels.BuyerOrder, children []*ordersmodels.SellerOrder) {
	sellerIDs := make([]string, 0, len(children))
	childIDs := make([]string, 0, len(children))
	for _, child := range children {
		sellerIDs = append(sellerIDs, child.SellerID.String())
		childIDs = append(childIDs, child.ChildID.String())
	}
	err := s.publisher.Publish(ctx, events.TypeOrderPlaced, parent.BuyerID.String(), events.OrderPlaced{
		OrderID:     parent.OrderID.String(),
		BuyerID:     parent.BuyerID.String(),
		SellerIDs:   sellerIDs,
		ChildOrders: childIDs,
		Total:       parent.Summary.Total,
	})
	if err != nil {
		s.logger.Warn("order placed event not published", "order_id", parent.OrderID, "error", err)
	}
}
