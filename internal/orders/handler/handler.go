package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	identitymodels "karigari/internal/identity/models"
	"karigari/internal/orders/models"
	ordersservice "karigari/internal/orders/service"
	"karigari/internal/platform/middleware"
	"karigari/internal/transport/http/shared"
	id "karigari/pkg/domain"
	dErrors "karigari/pkg/domain-errors"
)

// Service defines the order operations the handler exposes.
type Service interface {
	ListSellerOrders(ctx context.Context, sellerID id.UserID) (*ordersservice.SellerOrderList, error)
	UpdateStatus(ctx context.Context, actorID id.UserID, childID id.SellerOrderID, to models.Status) (*models.SellerOrder, error)
	GetBuyerOrder(ctx context.Context, buyerID id.UserID, orderID id.OrderID) (*models.BuyerOrderView, error)
	ListBuyerOrders(ctx context.Context, buyerID id.UserID) (*ordersservice.BuyerOrderList, error)
}

// Handler serves the buyer and seller order endpoints.
type Handler struct {
	logger       *slog.Logger
	orders       Service
	jwtValidator middleware.JWTValidator
}

// New creates an orders Handler.
func New(orders Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		orders:       orders,
		jwtValidator: jwtValidator,
	}
}

// Register registers the order routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	buyerRouter := chi.NewRouter()
	buyerRouter.Use(middleware.Timeout(15 * time.Second))
	buyerRouter.Use(middleware.ContentTypeJSON)
	buyerRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	buyerRouter.Use(middleware.RequireRole(string(identitymodels.RoleBuyer)))
	buyerRouter.Get("/", h.handleListBuyerOrders)
	buyerRouter.Get("/{orderID}", h.handleGetBuyerOrder)
	r.Mount("/orders", buyerRouter)

	sellerRouter := chi.NewRouter()
	sellerRouter.Use(middleware.Timeout(15 * time.Second))
	sellerRouter.Use(middleware.ContentTypeJSON)
	sellerRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	sellerRouter.Use(middleware.RequireRole(string(identitymodels.RoleSeller)))
	sellerRouter.Get("/orders", h.handleListSellerOrders)
	sellerRouter.Post("/orders/{orderID}/status", h.handleUpdateStatus)
	r.Mount("/seller", sellerRouter)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleListBuyerOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	buyerID := id.UserID(middleware.GetUserID(ctx))

	list, err := h.orders.ListBuyerOrders(ctx, buyerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list orders",
			"request_id", middleware.GetRequestID(ctx), "error", err.Error())
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetBuyerOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	buyerID := id.UserID(middleware.GetUserID(ctx))

	orderID, err := id.ParseOrderID(chi.URLParam(r, "orderID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	view, err := h.orders.GetBuyerOrder(ctx, buyerID, orderID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleListSellerOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sellerID := id.UserID(middleware.GetUserID(ctx))

	list, err := h.orders.ListSellerOrders(ctx, sellerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list seller orders",
			"request_id", middleware.GetRequestID(ctx), "error", err.Error())
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sellerID := id.UserID(middleware.GetUserID(ctx))

	childID := id.SellerOrderID(chi.URLParam(r, "orderID"))
	if childID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "order id is required"))
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	order, err := h.orders.UpdateStatus(ctx, sellerID, childID, models.Status(req.Status))
	if err != nil {
		h.logger.WarnContext(ctx, "status update rejected",
			"request_id", middleware.GetRequestID(ctx),
			"child_id", childID, "error", err.Error())
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, order)
}
