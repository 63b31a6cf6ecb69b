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

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	cartmodels "karigari/internal/cart/models"
	cartservice "karigari/internal/cart/service"
	cartstore "karigari/internal/cart/store"
	catalogmodels "karigari/internal/catalog/models"
	"karigari/internal/catalog/resolver"
	catalogservice "karigari/internal/catalog/service"
	catalogstore "karigari/internal/catalog/store"
	identitymodels "karigari/internal/identity/models"
	identitystore "karigari/internal/identity/store"
	"karigari/internal/platform/middleware"
	id "karigari/pkg/domain"
)

type CartHandlerSuite struct {
	suite.Suite
	handler *Handler
}

func TestCartHandlerSuite(t *testing.T) {
	suite.Run(t, new(CartHandlerSuite))
}

func (s *CartHandlerSuite) SetupTest() {
	ctx := context.Background()
	users := identitystore.NewMemory()
	products := catalogstore.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.Require().NoError(users.Put(ctx, &identitymodels.User{
		ID: "S1", Role: identitymodels.RoleSeller, Name: "Asha", ProfileComplete: true,
	}))
	s.Require().NoError(products.Put(ctx, &catalogmodels.Product{
		ID:       "p1",
		Title:    "Handwoven shawl",
		Price:    200,
		Status:   catalogmodels.StatusActive,
		Identity: catalogmodels.SellerIdentity{SellerID: "S1"},
	}))

	catalogSvc, err := catalogservice.New(products, resolver.New(users), catalogservice.WithLogger(logger))
	s.Require().NoError(err)
	cartSvc, err := cartservice.New(cartstore.NewMemory(), cartservice.WithLogger(logger))
	s.Require().NoError(err)

	s.handler = New(cartSvc, catalogSvc, logger, nil)
}

func asBuyer(req *http.Request, buyerID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyUserID, buyerID)
	ctx = context.WithValue(ctx, middleware.ContextKeyRole, string(identitymodels.RoleBuyer))
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func (s *CartHandlerSuite) addItem(buyerID, productID string, qty int) *httptest.ResponseRecorder {
	body, err := json.Marshal(addItemRequest{ProductID: productID, Quantity: qty})
	s.Require().NoError(err)

	req := asBuyer(httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(body)), buyerID)
	w := httptest.NewRecorder()
	s.handler.handleAddItem(w, req)
	return w
}

func (s *CartHandlerSuite) TestHandleAddItem() {
	w := s.addItem("buyer-1", "p1", 2)
	s.Require().Equal(http.StatusOK, w.Code)

	var cart cartmodels.Cart
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &cart))
	s.Require().Len(cart.Items, 1)
	s.Equal(id.UserID("S1"), cart.Items[0].SellerID)
	s.Equal(int64(400), cart.Totals.Subtotal)
	s.Equal(int64(570), cart.Totals.Total)
}

func (s *CartHandlerSuite) TestHandleAddItemUnknownProduct() {
	w := s.addItem("buyer-1", "missing", 1)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *CartHandlerSuite) TestHandleAddItemBadBody() {
	req := asBuyer(httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader([]byte("{"))), "buyer-1")
	w := httptest.NewRecorder()
	s.handler.handleAddItem(w, req)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *CartHandlerSuite) TestHandleGetCart() {
	s.addItem("buyer-1", "p1", 1)

	req := asBuyer(httptest.NewRequest(http.MethodGet, "/cart", nil), "buyer-1")
	w := httptest.NewRecorder()
	s.handler.handleGetCart(w, req)
	s.Require().Equal(http.StatusOK, w.Code)

	var cart cartmodels.Cart
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &cart))
	s.Len(cart.Items, 1)
}

func (s *CartHandlerSuite) TestHandleUpdateQuantity() {
	s.addItem("buyer-1", "p1", 1)

	body, err := json.Marshal(updateQuantityRequest{Quantity: 3})
	s.Require().NoError(err)
	req := asBuyer(httptest.NewRequest(http.MethodPut, "/cart/items/p1", bytes.NewReader(body)), "buyer-1")
	req = withURLParam(req, "productID", "p1")
	w := httptest.NewRecorder()
	s.handler.handleUpdateQuantity(w, req)
	s.Require().Equal(http.StatusOK, w.Code)

	var cart cartmodels.Cart
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &cart))
	s.Equal(3, cart.Items[0].Quantity)
}

func (s *CartHandlerSuite) TestHandleRemoveItem() {
	s.addItem("buyer-1", "p1", 1)

	req := asBuyer(httptest.NewRequest(http.MethodDelete, "/cart/items/p1", nil), "buyer-1")
	req = withURLParam(req, "productID", "p1")
	w := httptest.NewRecorder()
	s.handler.handleRemoveItem(w, req)
	s.Require().Equal(http.StatusOK, w.Code)

	var cart cartmodels.Cart
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &cart))
	s.Empty(cart.Items)
}

func (s *CartHandlerSuite) TestHandleRemoveAbsentItem() {
	req := asBuyer(httptest.NewRequest(http.MethodDelete, "/cart/items/nope", nil), "buyer-1")
	req = withURLParam(req, "productID", "nope")
	w := httptest.NewRecorder()
	s.handler.handleRemoveItem(w, req)
	s.Equal(http.StatusNotFound, w.Code)
}
