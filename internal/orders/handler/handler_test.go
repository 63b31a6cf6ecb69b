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

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	identitymodels "karigari/internal/identity/models"
	"karigari/internal/orders/models"
	ordersservice "karigari/internal/orders/service"
	"karigari/internal/orders/store/buyerorders"
	"karigari/internal/orders/store/sellerorders"
	"karigari/internal/platform/middleware"
	id "karigari/pkg/domain"
)

type OrdersHandlerSuite struct {
	suite.Suite

	ctx          context.Context
	sellerOrders *sellerorders.InMemoryStore
	buyerOrders  *buyerorders.InMemoryStore
	handler      *Handler
	now          time.Time
}

func TestOrdersHandlerSuite(t *testing.T) {
	suite.Run(t, new(OrdersHandlerSuite))
}

func (s *OrdersHandlerSuite) SetupTest() {
	s.ctx = context.Background()
	s.sellerOrders = sellerorders.NewMemory()
	s.buyerOrders = buyerorders.NewMemory()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc, err := ordersservice.New(s.sellerOrders, s.buyerOrders,
		ordersservice.WithLogger(logger),
		ordersservice.WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)
	s.handler = New(svc, logger, nil)
}

func (s *OrdersHandlerSuite) seed(parent id.OrderID, seller id.UserID, buyer id.UserID, status models.Status) {
	s.Require().NoError(s.buyerOrders.Put(s.ctx, &models.BuyerOrder{
		OrderID: parent, BuyerID: buyer,
		Status: models.StatusConfirmed, PaymentStatus: models.PaymentPaid,
		CreatedAt: s.now,
	}))
	s.Require().NoError(s.sellerOrders.Upsert(s.ctx, &models.SellerOrder{
		ChildID: id.ChildOrderID(parent, seller), ParentOrderID: parent,
		SellerID: seller, BuyerID: buyer,
		Status: status, PaymentStatus: models.PaymentPaid,
		CreatedAt: s.now, UpdatedAt: s.now,
	}))
}

func as(req *http.Request, userID string, role identitymodels.Role) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, middleware.ContextKeyRole, string(role))
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func (s *OrdersHandlerSuite) updateStatus(seller, childID, status string) *httptest.ResponseRecorder {
	body, err := json.Marshal(updateStatusRequest{Status: status})
	s.Require().NoError(err)

	req := as(httptest.NewRequest(http.MethodPost, "/seller/orders/"+childID+"/status", bytes.NewReader(body)), seller, identitymodels.RoleSeller)
	req = withURLParam(req, "orderID", childID)
	w := httptest.NewRecorder()
	s.handler.handleUpdateStatus(w, req)
	return w
}

func (s *OrdersHandlerSuite) TestHandleUpdateStatus() {
	s.seed("ORDER_1", "S1", "buyer-1", models.StatusConfirmed)
	childID := string(id.ChildOrderID("ORDER_1", "S1"))

	w := s.updateStatus("S1", childID, "preparing")
	s.Require().Equal(http.StatusOK, w.Code)

	var order models.SellerOrder
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &order))
	s.Equal(models.StatusPreparing, order.Status)
}

func (s *OrdersHandlerSuite) TestHandleUpdateStatusConflicts() {
	s.seed("ORDER_1", "S1", "buyer-1", models.StatusConfirmed)
	childID := string(id.ChildOrderID("ORDER_1", "S1"))

	s.Equal(http.StatusConflict, s.updateStatus("S1", childID, "delivered").Code)
	s.Equal(http.StatusForbidden, s.updateStatus("S2", childID, "preparing").Code)
	s.Equal(http.StatusBadRequest, s.updateStatus("S1", childID, "shipped").Code)
	s.Equal(http.StatusNotFound, s.updateStatus("S1", "ORDER_9_S1", "preparing").Code)
}

func (s *OrdersHandlerSuite) TestHandleListSellerOrders() {
	s.seed("ORDER_1", "S1", "buyer-1", models.StatusConfirmed)
	s.seed("ORDER_2", "S1", "buyer-2", models.StatusPreparing)

	req := as(httptest.NewRequest(http.MethodGet, "/seller/orders", nil), "S1", identitymodels.RoleSeller)
	w := httptest.NewRecorder()
	s.handler.handleListSellerOrders(w, req)
	s.Require().Equal(http.StatusOK, w.Code)

	var list ordersservice.SellerOrderList
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &list))
	s.Len(list.Orders, 2)
	s.Equal(1, list.StatusCounts[models.StatusConfirmed])
	s.Equal(1, list.StatusCounts[models.StatusPreparing])
}

func (s *OrdersHandlerSuite) TestHandleGetBuyerOrder() {
	s.seed("ORDER_1", "S1", "buyer-1", models.StatusDispatched)

	req := as(httptest.NewRequest(http.MethodGet, "/orders/ORDER_1", nil), "buyer-1", identitymodels.RoleBuyer)
	req = withURLParam(req, "orderID", "ORDER_1")
	w := httptest.NewRecorder()
	s.handler.handleGetBuyerOrder(w, req)
	s.Require().Equal(http.StatusOK, w.Code)

	var view models.BuyerOrderView
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &view))
	s.Equal(models.StatusDispatched, view.OverallStatus)
	s.Len(view.StatusDetails, 1)
}

func (s *OrdersHandlerSuite) TestHandleGetBuyerOrderWrongBuyer() {
	s.seed("ORDER_1", "S1", "buyer-1", models.StatusConfirmed)

	req := as(httptest.NewRequest(http.MethodGet, "/orders/ORDER_1", nil), "buyer-2", identitymodels.RoleBuyer)
	req = withURLParam(req, "orderID", "ORDER_1")
	w := httptest.NewRecorder()
	s.handler.handleGetBuyerOrder(w, req)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *OrdersHandlerSuite) TestHandleListBuyerOrders() {
	s.seed("ORDER_1", "S1", "buyer-1", models.StatusConfirmed)
	s.seed("ORDER_2", "S2", "buyer-1", models.StatusDelivered)

	req := as(httptest.NewRequest(http.MethodGet, "/orders", nil), "buyer-1", identitymodels.RoleBuyer)
	w := httptest.NewRecorder()
	s.handler.handleListBuyerOrders(w, req)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp struct {
		Orders       []models.BuyerOrderView `json:"orders"`
		StatusCounts map[models.Status]int   `json:"status_counts"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Len(resp.Orders, 2)
	s.Equal(1, resp.StatusCounts[models.StatusConfirmed])
	s.Equal(1, resp.StatusCounts[models.StatusDelivered])
}
