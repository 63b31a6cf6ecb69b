package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	cartmodels "karigari/internal/cart/models"
	ordersmodels "karigari/internal/orders/models"
	id "karigari/pkg/domain"
)

// deliveryLeadTime is the promise stamped on every order at checkout.
const deliveryLeadTime = 7 * 24 * time.Hour

// sellerGroup is one seller's slice of the cart.
type sellerGroup struct {
	sellerID id.UserID
	items    []cartmodels.CartItem
}

// partition splits cart lines by their snapshotted seller id. Lines without
// one cannot be attributed and are reported back instead of silently
// dropped. Groups come back in stable seller id order so child writes and
// derived ids are deterministic across retries.
func partition(items []cartmodels.CartItem) ([]sellerGroup, []SkippedItem) {
	bySeller := make(map[id.UserID][]cartmodels.CartItem)
	var skipped []SkippedItem
	for _, item := range items {
		if item.SellerID.IsEmpty() {
			skipped = append(skipped, SkippedItem{
				ProductID: item.ProductID,
				Title:     item.Title,
				Reason:    "no valid seller",
			})
			continue
		}
		bySeller[item.SellerID] = append(bySeller[item.SellerID], item)
	}

	groups := make([]sellerGroup, 0, len(bySeller))
	for sellerID, groupItems := range bySeller {
		groups = append(groups, sellerGroup{sellerID: sellerID, items: groupItems})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].sellerID < groups[j].sellerID
	})
	return groups, skipped
}

func orderItems(items []cartmodels.CartItem) []ordersmodels.OrderItem {
	out := make([]ordersmodels.OrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, ordersmodels.OrderItem{
			ProductID:   item.ProductID,
			Title:       item.Title,
			Description: item.Description,
			Price:       item.Price,
			Quantity:    item.Quantity,
			Images:      item.Images,
			Category:    item.Category,
			SellerID:    item.SellerID,
			SellerName:  item.SellerName,
			TotalPrice:  item.LineTotal(),
		})
	}
	return out
}

// childSummary is the seller-scoped fee breakdown. Total is what the seller
// fulfils against: their subtotal plus delivery. The platform fee is listed
// for transparency but retained by the marketplace, and shipping is a
// parent-level charge, so neither is added in.
func childSummary(items []cartmodels.CartItem) ordersmodels.OrderSummary {
	var sub int64
	var qty int
	for _, item := range items {
		sub += item.LineTotal()
		qty += item.Quantity
	}
	return ordersmodels.OrderSummary{
		ItemsCount:    len(items),
		TotalQuantity: qty,
		Subtotal:      sub,
		PlatformFee:   cartmodels.PlatformFee(sub),
		DeliveryFee:   int64(cartmodels.DeliveryFeePerUnit) * int64(qty),
		Total:         sub + int64(cartmodels.DeliveryFeePerUnit)*int64(qty),
	}
}

func buildChild(parentID id.OrderID, buyerID id.UserID, details ordersmodels.BuyerDetails, group sellerGroup, now time.Time) *ordersmodels.SellerOrder {
	return &ordersmodels.SellerOrder{
		ChildID:           id.ChildOrderID(parentID, group.sellerID),
		ParentOrderID:     parentID,
		SellerID:          group.sellerID,
		BuyerID:           buyerID,
		BuyerDetails:      details,
		Items:             orderItems(group.items),
		Summary:           childSummary(group.items),
		Status:            ordersmodels.StatusPending,
		PaymentStatus:     ordersmodels.PaymentPaid,
		EstimatedDelivery: now.Add(deliveryLeadTime),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// writeChildren upserts every child concurrently and reports the outcome
// per seller. One seller's failure never cancels another's write: a child
// that lands stays landed, and the retry with the same parent id converges
// on the ones that did not.
func (s *Service) writeChildren(ctx context.Context, children []*ordersmodels.SellerOrder) map[id.UserID]error {
	var mu sync.Mutex
	outcomes := make(map[id.UserID]error, len(children))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, child := range children {
		g.Go(func() error {
			err := s.sellerOrders.Upsert(ctx, child)
			mu.Lock()
			outcomes[child.SellerID] = err
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
