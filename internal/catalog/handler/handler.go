package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"karigari/internal/catalog/models"
	"karigari/internal/platform/middleware"
	"karigari/internal/transport/http/shared"
	id "karigari/pkg/domain"
)

// Service defines the catalog reads the handler exposes.
type Service interface {
	ListActive(ctx context.Context) ([]models.ResolvedProduct, error)
	GetResolved(ctx context.Context, productID id.ProductID) (*models.ResolvedProduct, error)
}

// Handler serves the public product endpoints. No auth: browsing the
// catalog does not require an account.
type Handler struct {
	logger  *slog.Logger
	catalog Service
}

// New creates a catalog Handler.
func New(catalog Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, catalog: catalog}
}

// Register registers the product routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	productRouter := chi.NewRouter()
	productRouter.Use(middleware.Timeout(15 * time.Second))
	productRouter.Use(middleware.ContentTypeJSON)
	productRouter.Get("/", h.handleListProducts)
	productRouter.Get("/{productID}", h.handleGetProduct)

	r.Mount("/products", productRouter)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.catalog.ListActive(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list products",
			"request_id", middleware.GetRequestID(ctx), "error", err.Error())
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	productID, err := id.ParseProductID(chi.URLParam(r, "productID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	product, err := h.catalog.GetResolved(ctx, productID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, product)
}
