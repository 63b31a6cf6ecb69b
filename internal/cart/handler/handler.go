package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	cartmodels "karigari/internal/cart/models"
	catalogmodels "karigari/internal/catalog/models"
	identitymodels "karigari/internal/identity/models"
	"karigari/internal/platform/middleware"
	"karigari/internal/transport/http/shared"
	id "karigari/pkg/domain"
	dErrors "karigari/pkg/domain-errors"
)

// Service defines the cart operations the handler exposes.
type Service interface {
	Get(ctx context.Context, buyerID id.UserID) (*cartmodels.Cart, error)
	AddItem(ctx context.Context, buyerID id.UserID, product catalogmodels.ResolvedProduct, qty int) (*cartmodels.Cart, error)
	UpdateQuantity(ctx context.Context, buyerID id.UserID, productID id.ProductID, qty int) (*cartmodels.Cart, error)
	RemoveItem(ctx context.Context, buyerID id.UserID, productID id.ProductID) (*cartmodels.Cart, error)
}

// Catalog resolves the product a buyer is adding, seller included.
type Catalog interface {
	GetResolved(ctx context.Context, productID id.ProductID) (*catalogmodels.ResolvedProduct, error)
}

// Handler serves the buyer cart endpoints.
type Handler struct {
	logger       *slog.Logger
	cart         Service
	catalog      Catalog
	jwtValidator middleware.JWTValidator
}

// New creates a cart Handler.
func New(cart Service, catalog Catalog, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		cart:         cart,
		catalog:      catalog,
		jwtValidator: jwtValidator,
	}
}

// Register registers the cart routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	cartRouter := chi.NewRouter()
	cartRouter.Use(middleware.Timeout(15 * time.Second))
	cartRouter.Use(middleware.ContentTypeJSON)
	cartRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	cartRouter.Use(middleware.RequireRole(string(identitymodels.RoleBuyer)))
	cartRouter.Get("/", h.handleGetCart)
	cartRouter.Post("/items", h.handleAddItem)
	cartRouter.Put("/items/{productID}", h.handleUpdateQuantity)
	cartRouter.Delete("/items/{productID}", h.handleRemoveItem)

	r.Mount("/cart", cartRouter)
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	buyerID := id.UserID(middleware.GetUserID(ctx))

	cart, err := h.cart.Get(ctx, buyerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load cart",
			"request_id", middleware.GetRequestID(ctx), "error", err.Error())
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, cart)
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	buyerID := id.UserID(middleware.GetUserID(ctx))

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	productID, err := id.ParseProductID(req.ProductID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	product, err := h.catalog.GetResolved(ctx, productID)
	if err != nil {
		h.logger.WarnContext(ctx, "add to cart rejected",
			"request_id", middleware.GetRequestID(ctx),
			"product_id", productID, "error", err.Error())
		shared.WriteError(w, err)
		return
	}

	cart, err := h.cart.AddItem(ctx, buyerID, *product, req.Quantity)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, cart)
}

func (h *Handler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	buyerID := id.UserID(middleware.GetUserID(ctx))

	productID, err := id.ParseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	cart, err := h.cart.UpdateQuantity(ctx, buyerID, productID, req.Quantity)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, cart)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	buyerID := id.UserID(middleware.GetUserID(ctx))

	productID, err := id.ParseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	cart, err := h.cart.RemoveItem(ctx, buyerID, productID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, cart)
}
