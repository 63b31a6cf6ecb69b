package models

import (
	"time"

	id "karigari/pkg/domain"
)

// Fee schedule. Whole-rupee integers throughout; the platform fee is the
// only derived value that can land between units and it rounds half up.
const (
	PlatformFeePercent    = 5
	DeliveryFeePerUnit    = 50
	ShippingFlat          = 50
	FreeShippingThreshold = 500
)

// CartItem is an immutable snapshot of a product at add-time. SellerID was
// validated by the resolver before the item entered the cart and is never
// re-resolved afterwards; checkout partitions on exactly this value.
type CartItem struct {
	ProductID      id.ProductID `json:"product_id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Price          int64        `json:"price"`
	Quantity       int          `json:"quantity"`
	Images         []string     `json:"images"`
	Category       string       `json:"category"`
	SellerID       id.UserID    `json:"seller_id"`
	SellerName     string       `json:"seller_name"`
	SellerShopName string       `json:"seller_shop_name,omitempty"`
	AddedAt        time.Time    `json:"added_at"`
}

// LineTotal is price times quantity for this line.
func (i CartItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// Totals are always derived from the current lines, never set directly.
type Totals struct {
	Subtotal    int64 `json:"subtotal"`
	PlatformFee int64 `json:"platform_fee"`
	DeliveryFee int64 `json:"delivery_fee"`
	Shipping    int64 `json:"shipping"`
	Total       int64 `json:"total"`
	TotalItems  int   `json:"total_items"`
}

// Cart holds one buyer's pending purchase. There is exactly one cart per
// buyer; clearing zeroes it rather than deleting it.
type Cart struct {
	BuyerID   id.UserID  `json:"buyer_id"`
	Items     []CartItem `json:"items"`
	Totals    Totals     `json:"totals"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Recompute derives the totals from the current lines.
func (c *Cart) Recompute() {
	c.Totals = ComputeTotals(c.Items)
}

// ComputeTotals applies the fee schedule to a set of lines:
//
//	subtotal    = Σ(price × qty)
//	platformFee = round(subtotal × 5%), half up
//	deliveryFee = 50 × Σ(qty)
//	shipping    = 0 if subtotal > 500, else 50
//	total       = subtotal + platformFee + deliveryFee + shipping
func ComputeTotals(items []CartItem) Totals {
	var t Totals
	if len(items) == 0 {
		// A cleared cart is all zeroes; the flat shipping charge only
		// applies once there is something to ship.
		return t
	}
	for _, item := range items {
		t.Subtotal += item.LineTotal()
		t.TotalItems += item.Quantity
	}
	t.PlatformFee = PlatformFee(t.Subtotal)
	t.DeliveryFee = int64(DeliveryFeePerUnit) * int64(t.TotalItems)
	if t.Subtotal <= FreeShippingThreshold {
		t.Shipping = ShippingFlat
	}
	t.Total = t.Subtotal + t.PlatformFee + t.DeliveryFee + t.Shipping
	return t
}

// PlatformFee is 5% of the subtotal rounded half up, in whole rupees.
func PlatformFee(subtotal int64) int64 {
	return (subtotal*PlatformFeePercent + 50) / 100
}
