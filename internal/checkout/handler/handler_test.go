package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	cartservice "karigari/internal/cart/service"
	cartstore "karigari/internal/cart/store"
	catalogmodels "karigari/internal/catalog/models"
	checkoutservice "karigari/internal/checkout/service"
	identitymodels "karigari/internal/identity/models"
	identitystore "karigari/internal/identity/store"
	ordersmodels "karigari/internal/orders/models"
	"karigari/internal/orders/store/buyerorders"
	"karigari/internal/orders/store/sellerorders"
	"karigari/internal/platform/middleware"
	id "karigari/pkg/domain"
)

type CheckoutHandlerSuite struct {
	suite.Suite

	ctx     context.Context
	carts   *cartservice.Service
	handler *Handler
}

func TestCheckoutHandlerSuite(t *testing.T) {
	suite.Run(t, new(CheckoutHandlerSuite))
}

func (s *CheckoutHandlerSuite) SetupTest() {
	s.ctx = context.Background()
	users := identitystore.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.Require().NoError(users.Put(s.ctx, &identitymodels.User{
		ID: "buyer-1", Role: identitymodels.RoleBuyer,
		Name: "Ravi", Address: "12 MG Road",
	}))

	carts, err := cartservice.New(cartstore.NewMemory(),
		cartservice.WithClock(func() time.Time { return now }))
	s.Require().NoError(err)
	s.carts = carts

	checkoutSvc, err := checkoutservice.New(carts, users, sellerorders.NewMemory(), buyerorders.NewMemory(),
		checkoutservice.WithLogger(logger),
		checkoutservice.WithClock(func() time.Time { return now }),
	)
	s.Require().NoError(err)

	s.handler = New(checkoutSvc, logger, nil)
}

func asBuyer(req *http.Request, buyerID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyUserID, buyerID)
	ctx = context.WithValue(ctx, middleware.ContextKeyRole, string(identitymodels.RoleBuyer))
	return req.WithContext(ctx)
}

func (s *CheckoutHandlerSuite) addToCart(productID string, price int64, qty int, sellerID string) {
	_, err := s.carts.AddItem(s.ctx, "buyer-1", catalogmodels.ResolvedProduct{
		Product: catalogmodels.Product{
			ID:     id.ProductID(productID),
			Title:  "Handcrafted " + productID,
			Price:  price,
			Status: catalogmodels.StatusActive,
		},
		SellerID: id.UserID(sellerID),
	}, qty)
	s.Require().NoError(err)
}

func (s *CheckoutHandlerSuite) checkout(body io.Reader) *httptest.ResponseRecorder {
	req := asBuyer(httptest.NewRequest(http.MethodPost, "/checkout", body), "buyer-1")
	w := httptest.NewRecorder()
	s.handler.handleCheckout(w, req)
	return w
}

func (s *CheckoutHandlerSuite) TestHandleCheckout() {
	s.addToCart("p1", 200, 2, "S1")
	s.addToCart("p2", 150, 2, "S2")

	w := s.checkout(nil)
	s.Require().Equal(http.StatusCreated, w.Code)

	var result checkoutservice.Result
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.Require().NotNil(result.Order)
	s.Len(result.ChildOrders, 2)
	s.Equal(ordersmodels.StatusConfirmed, result.Order.Status)
	s.Equal(int64(935), result.Order.Summary.Total)

	cart, err := s.carts.Get(s.ctx, "buyer-1")
	s.Require().NoError(err)
	s.Empty(cart.Items, "a placed order empties the cart")
}

func (s *CheckoutHandlerSuite) TestHandleCheckoutKeepsGivenOrderID() {
	s.addToCart("p1", 200, 1, "S1")

	body, err := json.Marshal(checkoutRequest{OrderID: "ORDER_RETRY"})
	s.Require().NoError(err)

	w := s.checkout(bytes.NewReader(body))
	s.Require().Equal(http.StatusCreated, w.Code)

	var result checkoutservice.Result
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.Equal(id.OrderID("ORDER_RETRY"), result.Order.OrderID)
}

func (s *CheckoutHandlerSuite) TestHandleCheckoutEmptyCart() {
	w := s.checkout(nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *CheckoutHandlerSuite) TestHandleCheckoutBadBody() {
	s.addToCart("p1", 200, 1, "S1")

	w := s.checkout(bytes.NewReader([]byte("{")))
	s.Equal(http.StatusBadRequest, w.Code)
}
