package service

import (
	"context"
	"fmt"
	"log/slog"

	"karigari/internal/catalog/models"
	"karigari/internal/catalog/resolver"
	id "karigari/pkg/domain"
	dErrors "karigari/pkg/domain-errors"
)

// Store is the catalog persistence the service reads from.
type Store interface {
	Get(ctx context.Context, productID id.ProductID) (*models.Product, error)
	ListActive(ctx context.Context) ([]*models.Product, error)
}

// Service serves buyer-facing product reads with seller enrichment.
type Service struct {
	store    Store
	resolver *resolver.Resolver
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, res *resolver.Resolver, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("catalog store is required")
	}
	if res == nil {
		return nil, fmt.Errorf("seller resolver is required")
	}

	svc := &Service{store: store, resolver: res, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ListActive returns buyer-visible products with resolved seller identity.
// Orphaned products stay in the listing (buyers can still browse them) but
// carry an empty seller id, which blocks them at add-to-cart time.
func (s *Service) ListActive(ctx context.Context) ([]models.ResolvedProduct, error) {
	products, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list products")
	}

	out := make([]models.ResolvedProduct, 0, len(products))
	for _, p := range products {
		rp, err := s.resolve(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, *rp)
	}
	return out, nil
}

// GetResolved returns one product with its resolved seller, or CodeNotFound.
func (s *Service) GetResolved(ctx context.Context, productID id.ProductID) (*models.ResolvedProduct, error) {
	if productID.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "product id is required")
	}
	p, err := s.store.Get(ctx, productID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
	}
	if p == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "product not found")
	}
	return s.resolve(ctx, p)
}

func (s *Service) resolve(ctx context.Context, p *models.Product) (*models.ResolvedProduct, error) {
	sellerID, seller, err := s.resolver.Resolve(ctx, *p)
	if err != nil {
		if !resolver.IsOrphaned(err) {
			return nil, err
		}
		s.logger.WarnContext(ctx, "product has no resolvable seller",
			"product_id", p.ID.String(),
		)
		return &models.ResolvedProduct{Product: *p}, nil
	}

	name := seller.Name
	if name == "" {
		name = seller.ShopName
	}
	return &models.ResolvedProduct{
		Product:  *p,
		SellerID: sellerID,
		SellerInfo: models.SellerInfo{
			Name:     name,
			ShopName: seller.ShopName,
			Location: seller.Location,
			Verified: seller.ProfileComplete,
		},
	}, nil
}
