package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"karigari/internal/cart/models"
	catalogmodels "karigari/internal/catalog/models"
	id "karigari/pkg/domain"
	dErrors "karigari/pkg/domain-errors"
)

// Store is the cart persistence contract. Get returns nil for a buyer who
// has never had a cart.
type Store interface {
	Get(ctx context.Context, buyerID id.UserID) (*models.Cart, error)
	Put(ctx context.Context, cart *models.Cart) error
}

// Service owns one cart per buyer. Every mutation recomputes the derived
// totals before the cart is written back; totals are never set directly.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock fixes the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store is required")
	}

	svc := &Service{store: store, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Get returns the buyer's cart, or an empty cart if none exists yet.
func (s *Service) Get(ctx context.Context, buyerID id.UserID) (*models.Cart, error) {
	if buyerID.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "buyer id is required")
	}
	cart, err := s.store.Get(ctx, buyerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load cart")
	}
	if cart == nil {
		cart = &models.Cart{BuyerID: buyerID, Items: []models.CartItem{}}
		cart.Recompute()
	}
	return cart, nil
}

// AddItem merges the product into an existing line or appends a new one,
// snapshotting the resolved seller identity at add time.
//
// An item never enters the cart without a validated seller id: checkout
// partitions on the snapshot, so admitting an unattributed item here would
// either mis-route revenue or force a skip later. Fail closed instead.
func (s *Service) AddItem(ctx context.Context, buyerID id.UserID, product catalogmodels.ResolvedProduct, qty int) (*models.Cart, error) {
	if qty < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "quantity must be at least 1")
	}
	if product.Product.ID.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "product id is required")
	}
	if product.SellerID.IsEmpty() {
		return nil, dErrors.New(dErrors.CodeValidation, "product has no validated seller").WithDetails(map[string]any{
			"product_id": product.Product.ID.String(),
			"reason":     "missing_seller",
		})
	}

	cart, err := s.Get(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == product.Product.ID {
			cart.Items[i].Quantity += qty
			cart.Items[i].AddedAt = now
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID:      product.Product.ID,
			Title:          product.Product.Title,
			Description:    product.Product.Description,
			Price:          product.Product.Price,
			Quantity:       qty,
			Images:         product.Product.Images,
			Category:       product.Product.Category,
			SellerID:       product.SellerID,
			SellerName:     product.SellerInfo.Name,
			SellerShopName: product.SellerInfo.ShopName,
			AddedAt:        now,
		})
	}

	return s.write(ctx, cart, now)
}

// UpdateQuantity sets the quantity on an existing line. Quantities below 1
// are rejected; removal is explicit via RemoveItem.
func (s *Service) UpdateQuantity(ctx context.Context, buyerID id.UserID, productID id.ProductID, qty int) (*models.Cart, error) {
	if qty < 1 {
		return nil, dErrors.New(dErrors.CodeValidation, "quantity must be at least 1")
	}

	cart, err := s.Get(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = qty
			return s.write(ctx, cart, s.now())
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "item not in cart")
}

// RemoveItem drops a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, buyerID id.UserID, productID id.ProductID) (*models.Cart, error) {
	cart, err := s.Get(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(cart.Items) {
		return nil, dErrors.New(dErrors.CodeNotFound, "item not in cart")
	}
	cart.Items = kept
	return s.write(ctx, cart, s.now())
}

// Clear zeroes the cart's items and totals. The cart document survives;
// only its contents reset. Checkout calls this after the parent order write.
func (s *Service) Clear(ctx context.Context, buyerID id.UserID) error {
	cart := &models.Cart{BuyerID: buyerID, Items: []models.CartItem{}}
	_, err := s.write(ctx, cart, s.now())
	return err
}

func (s *Service) write(ctx context.Context, cart *models.Cart, now time.Time) (*models.Cart, error) {
	cart.Recompute()
	cart.UpdatedAt = now
	if err := s.store.Put(ctx, cart); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save cart")
	}
	return cart, nil
}
