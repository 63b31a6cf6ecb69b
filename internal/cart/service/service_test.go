package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"karigari/internal/cart/models"
	cartstore "karigari/internal/cart/store"
	catalogmodels "karigari/internal/catalog/models"
	id "karigari/pkg/domain"
	dErrors "karigari/pkg/domain-errors"
)

type CartServiceSuite struct {
	suite.Suite
	store   *cartstore.InMemoryStore
	service *Service
}

func TestCartServiceSuite(t *testing.T) {
	suite.Run(t, new(CartServiceSuite))
}

func (s *CartServiceSuite) SetupTest() {
	s.store = cartstore.NewMemory()

	var err error
	s.service, err = New(s.store, WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}))
	s.Require().NoError(err)
}

func resolved(productID string, price int64, sellerID string) catalogmodels.ResolvedProduct {
	return catalogmodels.ResolvedProduct{
		Product: catalogmodels.Product{
			ID:     id.ProductID(productID),
			Title:  "Handwoven shawl",
			Price:  price,
			Status: catalogmodels.StatusActive,
		},
		SellerID:   id.UserID(sellerID),
		SellerInfo: catalogmodels.SellerInfo{Name: "Asha", ShopName: "Asha Weaves"},
	}
}

func (s *CartServiceSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.Contains(err.Error(), "cart store is required")
	})
}

func (s *CartServiceSuite) TestAddItem() {
	ctx := context.Background()
	buyer := id.UserID("buyer-1")

	s.Run("appends a new line with seller snapshot", func() {
		cart, err := s.service.AddItem(ctx, buyer, resolved("p1", 200, "S1"), 2)
		s.Require().NoError(err)
		s.Require().Len(cart.Items, 1)
		s.Equal(id.UserID("S1"), cart.Items[0].SellerID)
		s.Equal(2, cart.Items[0].Quantity)
	})

	s.Run("merges into an existing line by product id", func() {
		cart, err := s.service.AddItem(ctx, buyer, resolved("p1", 200, "S1"), 1)
		s.Require().NoError(err)
		s.Require().Len(cart.Items, 1)
		s.Equal(3, cart.Items[0].Quantity)
	})

	s.Run("rejects a product without a validated seller", func() {
		_, err := s.service.AddItem(ctx, buyer, resolved("p2", 100, ""), 1)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		cart, err := s.service.Get(ctx, buyer)
		s.Require().NoError(err)
		s.Len(cart.Items, 1, "rejected items must not enter the cart")
	})

	s.Run("rejects quantity below 1", func() {
		_, err := s.service.AddItem(ctx, buyer, resolved("p3", 100, "S1"), 0)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *CartServiceSuite) TestTotals() {
	ctx := context.Background()

	s.Run("single line below free shipping threshold", func() {
		buyer := id.UserID("buyer-a")
		cart, err := s.service.AddItem(ctx, buyer, resolved("p1", 200, "S1"), 2)
		s.Require().NoError(err)

		// subtotal 400, 5% fee 20, delivery 2×50, shipping 50
		s.Equal(int64(400), cart.Totals.Subtotal)
		s.Equal(int64(20), cart.Totals.PlatformFee)
		s.Equal(int64(100), cart.Totals.DeliveryFee)
		s.Equal(int64(50), cart.Totals.Shipping)
		s.Equal(int64(570), cart.Totals.Total)
	})

	s.Run("free shipping above 500", func() {
		buyer := id.UserID("buyer-b")
		cart, err := s.service.AddItem(ctx, buyer, resolved("p1", 600, "S1"), 1)
		s.Require().NoError(err)

		s.Equal(int64(600), cart.Totals.Subtotal)
		s.Equal(int64(30), cart.Totals.PlatformFee)
		s.Equal(int64(50), cart.Totals.DeliveryFee)
		s.Equal(int64(0), cart.Totals.Shipping)
		s.Equal(int64(680), cart.Totals.Total)
	})

	s.Run("subtotal of exactly 500 still pays shipping", func() {
		buyer := id.UserID("buyer-c")
		cart, err := s.service.AddItem(ctx, buyer, resolved("p1", 500, "S1"), 1)
		s.Require().NoError(err)
		s.Equal(int64(50), cart.Totals.Shipping)
	})

	s.Run("platform fee rounds half up", func() {
		buyer := id.UserID("buyer-d")
		cart, err := s.service.AddItem(ctx, buyer, resolved("p1", 610, "S1"), 1)
		s.Require().NoError(err)
		// 5% of 610 is 30.5
		s.Equal(int64(31), cart.Totals.PlatformFee)
	})
}

func (s *CartServiceSuite) TestUpdateQuantity() {
	ctx := context.Background()
	buyer := id.UserID("buyer-1")

	_, err := s.service.AddItem(ctx, buyer, resolved("p1", 200, "S1"), 2)
	s.Require().NoError(err)

	s.Run("updates quantity and recomputes totals", func() {
		cart, err := s.service.UpdateQuantity(ctx, buyer, id.ProductID("p1"), 5)
		s.Require().NoError(err)
		s.Equal(5, cart.Items[0].Quantity)
		s.Equal(int64(1000), cart.Totals.Subtotal)
		s.Equal(int64(0), cart.Totals.Shipping)
	})

	s.Run("rejects quantity below 1", func() {
		_, err := s.service.UpdateQuantity(ctx, buyer, id.ProductID("p1"), 0)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown product id is not found", func() {
		_, err := s.service.UpdateQuantity(ctx, buyer, id.ProductID("ghost"), 1)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CartServiceSuite) TestRemoveItem() {
	ctx := context.Background()
	buyer := id.UserID("buyer-1")

	_, err := s.service.AddItem(ctx, buyer, resolved("p1", 200, "S1"), 1)
	s.Require().NoError(err)
	_, err = s.service.AddItem(ctx, buyer, resolved("p2", 300, "S2"), 1)
	s.Require().NoError(err)

	s.Run("removes the line and recomputes", func() {
		cart, err := s.service.RemoveItem(ctx, buyer, id.ProductID("p1"))
		s.Require().NoError(err)
		s.Len(cart.Items, 1)
		s.Equal(int64(300), cart.Totals.Subtotal)
	})

	s.Run("removing an absent line is not found", func() {
		_, err := s.service.RemoveItem(ctx, buyer, id.ProductID("p1"))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *CartServiceSuite) TestClear() {
	ctx := context.Background()
	buyer := id.UserID("buyer-1")

	_, err := s.service.AddItem(ctx, buyer, resolved("p1", 200, "S1"), 2)
	s.Require().NoError(err)

	s.Require().NoError(s.service.Clear(ctx, buyer))

	cart, err := s.service.Get(ctx, buyer)
	s.Require().NoError(err)
	s.Empty(cart.Items)
	s.Equal(models.Totals{}, cart.Totals, "clearing must zero every derived total")
}
