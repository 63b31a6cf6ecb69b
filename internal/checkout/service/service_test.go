package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	cartmodels "karigari/internal/cart/models"
	cartservice "karigari/internal/cart/service"
	cartstore "karigari/internal/cart/store"
	catalogmodels "karigari/internal/catalog/models"
	"karigari/internal/events"
	identitymodels "karigari/internal/identity/models"
	identitystore "karigari/internal/identity/store"
	ordersmodels "karigari/internal/orders/models"
	"karigari/internal/orders/store/buyerorders"
	"karigari/internal/orders/store/sellerorders"
	id "karigari/pkg/domain"
	dErrors "karigari/pkg/domain-errors"
)

// failingWriter fails upserts for one seller and delegates the rest.
type failingWriter struct {
	inner      *sellerorders.InMemoryStore
	failSeller id.UserID
}

func (w *failingWriter) Upsert(ctx context.Context, order *ordersmodels.SellerOrder) error {
	if order.SellerID == w.failSeller {
		return errors.New("write timeout")
	}
	return w.inner.Upsert(ctx, order)
}

type capturePublisher struct {
	types    []string
	payloads []any
}

func (p *capturePublisher) Publish(_ context.Context, eventType, _ string, payload any) error {
	p.types = append(p.types, eventType)
	p.payloads = append(p.payloads, payload)
	return nil
}

type CheckoutServiceSuite struct {
	suite.Suite

	ctx          context.Context
	cartStore    *cartstore.InMemoryStore
	carts        *cartservice.Service
	users        *identitystore.InMemoryStore
	sellerOrders *sellerorders.InMemoryStore
	buyerOrders  *buyerorders.InMemoryStore
	publisher    *capturePublisher
	now          time.Time
}

func TestCheckoutServiceSuite(t *testing.T) {
	suite.Run(t, new(CheckoutServiceSuite))
}

func (s *CheckoutServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.cartStore = cartstore.NewMemory()
	s.users = identitystore.NewMemory()
	s.sellerOrders = sellerorders.NewMemory()
	s.buyerOrders = buyerorders.NewMemory()
	s.publisher = &capturePublisher{}
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	carts, err := cartservice.New(s.cartStore, cartservice.WithClock(func() time.Time { return s.now }))
	s.Require().NoError(err)
	s.carts = carts

	s.Require().NoError(s.users.Put(s.ctx, &identitymodels.User{
		ID: "buyer-1", Role: identitymodels.RoleBuyer,
		Name: "Ravi", Phone: "98x", Email: "ravi@example.com", Address: "12 MG Road",
	}))
}

func (s *CheckoutServiceSuite) newService(writer SellerOrderWriter, opts ...Option) *Service {
	if writer == nil {
		writer = s.sellerOrders
	}
	opts = append([]Option{
		WithClock(func() time.Time { return s.now }),
		WithPublisher(s.publisher),
		WithIDGenerator(func() string { return "abcd1234" }),
	}, opts...)
	svc, err := New(s.carts, s.users, writer, s.buyerOrders, opts...)
	s.Require().NoError(err)
	return svc
}

func (s *CheckoutServiceSuite) addToCart(productID string, price int64, qty int, sellerID string) {
	_, err := s.carts.AddItem(s.ctx, "buyer-1", catalogmodels.ResolvedProduct{
		Product: catalogmodels.Product{
			ID:     id.ProductID(productID),
			Title:  "Handcrafted " + productID,
			Price:  price,
			Status: catalogmodels.StatusActive,
		},
		SellerID:   id.UserID(sellerID),
		SellerInfo: catalogmodels.SellerInfo{Name: "Asha"},
	}, qty)
	s.Require().NoError(err)
}

func (s *CheckoutServiceSuite) TestCheckoutFansOutPerSeller() {
	s.addToCart("p1", 200, 2, "S1")
	s.addToCart("p2", 150, 2, "S2")

	result, err := s.newService(nil).Checkout(s.ctx, Input{BuyerID: "buyer-1"})
	s.Require().NoError(err)

	s.Require().Len(result.ChildOrders, 2)
	s.Empty(result.SkippedItems)

	first := result.ChildOrders[0]
	s.Equal(id.UserID("S1"), first.SellerID)
	s.Equal(result.Order.OrderID, first.ParentOrderID)
	s.Equal(id.ChildOrderID(result.Order.OrderID, "S1"), first.ChildID)
	s.Equal(ordersmodels.StatusPending, first.Status)
	s.Equal(ordersmodels.PaymentPaid, first.PaymentStatus)
	s.Equal(int64(400), first.Summary.Subtotal)
	s.Equal(int64(20), first.Summary.PlatformFee)
	s.Equal(int64(100), first.Summary.DeliveryFee)
	s.Equal(int64(500), first.Summary.Total, "seller take excludes the platform fee")
	s.Equal(ordersmodels.BuyerDetails{Name: "Ravi", Phone: "98x", Email: "ravi@example.com", Address: "12 MG Road"}, first.BuyerDetails)

	second := result.ChildOrders[1]
	s.Equal(id.UserID("S2"), second.SellerID)
	s.Equal(int64(300), second.Summary.Subtotal)
	s.Equal(int64(400), second.Summary.Total)

	parent := result.Order
	s.Equal(ordersmodels.StatusConfirmed, parent.Status)
	s.Equal(int64(700), parent.Summary.Subtotal)
	s.Equal(int64(35), parent.Summary.PlatformFee)
	s.Equal(int64(200), parent.Summary.DeliveryFee)
	s.Equal(int64(0), parent.Summary.Shipping)
	s.Equal(int64(935), parent.Summary.Total)
	s.Equal(first.Summary.Subtotal+second.Summary.Subtotal, parent.Summary.Subtotal)
	s.Equal(s.now.Add(7*24*time.Hour), parent.EstimatedDelivery)

	stored, err := s.buyerOrders.Get(s.ctx, parent.OrderID)
	s.Require().NoError(err)
	s.Require().NotNil(stored)

	cart, err := s.carts.Get(s.ctx, "buyer-1")
	s.Require().NoError(err)
	s.True(cart.IsEmpty(), "cart must be cleared after checkout")

	s.Require().Len(s.publisher.types, 1)
	s.Equal(events.TypeOrderPlaced, s.publisher.types[0])
	placed := s.publisher.payloads[0].(events.OrderPlaced)
	s.ElementsMatch([]string{"S1", "S2"}, placed.SellerIDs)
}

func (s *CheckoutServiceSuite) TestCheckoutEmptyCart() {
	_, err := s.newService(nil).Checkout(s.ctx, Input{BuyerID: "buyer-1"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *CheckoutServiceSuite) TestCheckoutNoValidSeller() {
	// Legacy carts can hold lines without a seller snapshot; only direct
	// store writes can produce them.
	cart := &cartmodels.Cart{
		BuyerID: "buyer-1",
		Items: []cartmodels.CartItem{
			{ProductID: "p1", Title: "Orphaned pot", Price: 200, Quantity: 1},
		},
		UpdatedAt: s.now,
	}
	cart.Recompute()
	s.Require().NoError(s.cartStore.Put(s.ctx, cart))

	_, err := s.newService(nil).Checkout(s.ctx, Input{BuyerID: "buyer-1"})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	children, cerr := s.sellerOrders.ListBySeller(s.ctx, "")
	s.Require().NoError(cerr)
	s.Empty(children, "no writes on a fully unattributable cart")

	after, gerr := s.carts.Get(s.ctx, "buyer-1")
	s.Require().NoError(gerr)
	s.Len(after.Items, 1, "cart must survive a failed checkout")
}

func (s *CheckoutServiceSuite) TestCheckoutSkipsUnattributableLines() {
	s.addToCart("p1", 200, 2, "S1")
	cart, err := s.carts.Get(s.ctx, "buyer-1")
	s.Require().NoError(err)
	cart.Items = append(cart.Items, cartmodels.CartItem{
		ProductID: "p2", Title: "Orphaned pot", Price: 999, Quantity: 1,
	})
	cart.Recompute()
	s.Require().NoError(s.cartStore.Put(s.ctx, cart))

	result, err := s.newService(nil).Checkout(s.ctx, Input{BuyerID: "buyer-1"})
	s.Require().NoError(err)

	s.Require().Len(result.SkippedItems, 1)
	s.Equal(id.ProductID("p2"), result.SkippedItems[0].ProductID)
	s.Require().Len(result.ChildOrders, 1)
	s.Equal(int64(400), result.Order.Summary.Subtotal, "skipped lines stay out of the totals")
	s.Len(result.Order.Items, 1)
}

func (s *CheckoutServiceSuite) TestCheckoutPartialFailure() {
	s.addToCart("p1", 200, 2, "S1")
	s.addToCart("p2", 150, 2, "S2")

	writer := &failingWriter{inner: s.sellerOrders, failSeller: "S2"}
	_, err := s.newService(writer).Checkout(s.ctx, Input{BuyerID: "buyer-1", OrderID: "ORDER_RETRY"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	dErr := dErrors.Load(err)
	s.Require().NotNil(dErr)
	s.Equal("ORDER_RETRY", dErr.Details["order_id"])
	sellers := dErr.Details["sellers"].(map[string]string)
	s.Contains(sellers, "S2")
	s.NotContains(sellers, "S1")

	parent, perr := s.buyerOrders.Get(s.ctx, "ORDER_RETRY")
	s.Require().NoError(perr)
	s.Nil(parent, "parent must not exist after a partial failure")

	cartAfter, cerr := s.carts.Get(s.ctx, "buyer-1")
	s.Require().NoError(cerr)
	s.Len(cartAfter.Items, 2, "cart must survive a partial failure")

	landed, lerr := s.sellerOrders.Get(s.ctx, id.ChildOrderID("ORDER_RETRY", "S1"))
	s.Require().NoError(lerr)
	s.NotNil(landed, "successful child writes stay put for the retry")

	// Retry with the same order id converges without duplicating S1.
	result, err := s.newService(nil).Checkout(s.ctx, Input{BuyerID: "buyer-1", OrderID: "ORDER_RETRY"})
	s.Require().NoError(err)
	s.Equal(id.OrderID("ORDER_RETRY"), result.Order.OrderID)

	s1Orders, serr := s.sellerOrders.ListBySeller(s.ctx, "S1")
	s.Require().NoError(serr)
	s.Len(s1Orders, 1)
	s2Orders, serr := s.sellerOrders.ListBySeller(s.ctx, "S2")
	s.Require().NoError(serr)
	s.Len(s2Orders, 1)
}

func (s *CheckoutServiceSuite) TestCheckoutGeneratesOrderID() {
	s.addToCart("p1", 200, 1, "S1")

	result, err := s.newService(nil).Checkout(s.ctx, Input{BuyerID: "buyer-1"})
	s.Require().NoError(err)
	s.Equal(id.OrderID("ORDER_1748779200000_abcd1234"), result.Order.OrderID)
}

func (s *CheckoutServiceSuite) TestCheckoutShippingAddressOverride() {
	s.addToCart("p1", 200, 1, "S1")

	result, err := s.newService(nil).Checkout(s.ctx, Input{BuyerID: "buyer-1", ShippingAddress: "Flat 4, Jaipur"})
	s.Require().NoError(err)
	s.Equal("Flat 4, Jaipur", result.Order.BuyerDetails.Address)
	s.Equal("Ravi", result.Order.BuyerDetails.Name)
}
