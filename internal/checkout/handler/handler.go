package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	checkoutservice "karigari/internal/checkout/service"
	identitymodels "karigari/internal/identity/models"
	"karigari/internal/platform/middleware"
	"karigari/internal/transport/http/shared"
	id "karigari/pkg/domain"
	dErrors "karigari/pkg/domain-errors"
)

// Service defines the checkout operation the handler exposes.
type Service interface {
	Checkout(ctx context.Context, input checkoutservice.Input) (*checkoutservice.Result, error)
}

// Handler serves the checkout endpoint.
type Handler struct {
	logger       *slog.Logger
	checkout     Service
	jwtValidator middleware.JWTValidator
}

// New creates a checkout Handler.
func New(checkout Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		checkout:     checkout,
		jwtValidator: jwtValidator,
	}
}

// Register registers the checkout route with the chi router.
func (h *Handler) Register(r chi.Router) {
	checkoutRouter := chi.NewRouter()
	checkoutRouter.Use(middleware.Timeout(30 * time.Second))
	checkoutRouter.Use(middleware.ContentTypeJSON)
	checkoutRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	checkoutRouter.Use(middleware.RequireRole(string(identitymodels.RoleBuyer)))
	checkoutRouter.Post("/", h.handleCheckout)

	r.Mount("/checkout", checkoutRouter)
}

// An empty body is a plain checkout; the fields exist for address overrides
// and for retrying a partially failed checkout with its original order id.
type checkoutRequest struct {
	OrderID         string `json:"order_id,omitempty"`
	ShippingAddress string `json:"shipping_address,omitempty"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	buyerID := id.UserID(middleware.GetUserID(ctx))

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.checkout.Checkout(ctx, checkoutservice.Input{
		BuyerID:         buyerID,
		OrderID:         id.OrderID(req.OrderID),
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "checkout failed",
			"request_id", middleware.GetRequestID(ctx),
			"buyer_id", buyerID, "error", err.Error())
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, result)
}
