package models

import (
	"time"

	id "karigari/pkg/domain"
)

// PaymentStatus is recorded for the books; capture happens upstream and
// this subsystem only ever sees paid orders.
type PaymentStatus string

const (
	PaymentPaid PaymentStatus = "paid"
)

// OrderItem is a purchased line, snapshotted from the cart at checkout.
type OrderItem struct {
	ProductID   id.ProductID `json:"product_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Price       int64        `json:"price"`
	Quantity    int          `json:"quantity"`
	Images      []string     `json:"images,omitempty"`
	Category    string       `json:"category,omitempty"`
	SellerID    id.UserID    `json:"seller_id"`
	SellerName  string       `json:"seller_name,omitempty"`
	TotalPrice  int64        `json:"total_price"`
}

// OrderSummary is a fee breakdown. Parent orders carry the global breakdown
// including shipping; child orders carry the seller-scoped one, where Total
// is the seller's take (subtotal plus delivery) and PlatformFee is listed
// but retained by the marketplace.
type OrderSummary struct {
	ItemsCount    int   `json:"items_count"`
	TotalQuantity int   `json:"total_quantity"`
	Subtotal      int64 `json:"subtotal"`
	PlatformFee   int64 `json:"platform_fee"`
	DeliveryFee   int64 `json:"delivery_fee"`
	Shipping      int64 `json:"shipping,omitempty"`
	Total         int64 `json:"total"`
}

// BuyerDetails is the contact snapshot sellers need to fulfil an order.
type BuyerDetails struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address"`
}

// SellerOrder is the per-seller child of one checkout. Its id is derived
// from the (parent, seller) pair, so re-running the same checkout upserts
// rather than duplicates. Status is the only mutable field after creation.
type SellerOrder struct {
	ChildID           id.SellerOrderID `json:"child_id"`
	ParentOrderID     id.OrderID       `json:"parent_order_id"`
	SellerID          id.UserID        `json:"seller_id"`
	BuyerID           id.UserID        `json:"buyer_id"`
	BuyerDetails      BuyerDetails     `json:"buyer_details"`
	Items             []OrderItem      `json:"items"`
	Summary           OrderSummary     `json:"order_summary"`
	Status            Status           `json:"status"`
	PaymentStatus     PaymentStatus    `json:"payment_status"`
	EstimatedDelivery time.Time        `json:"estimated_delivery"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// BuyerOrder is the parent record for one checkout: the full non-skipped
// item list and the global fee breakdown. It is immutable after creation;
// the buyer-visible status is derived from the children at read time, never
// stored here.
type BuyerOrder struct {
	OrderID           id.OrderID    `json:"order_id"`
	BuyerID           id.UserID     `json:"buyer_id"`
	BuyerDetails      BuyerDetails  `json:"buyer_details"`
	Items             []OrderItem   `json:"items"`
	Summary           OrderSummary  `json:"order_summary"`
	Status            Status        `json:"status"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	EstimatedDelivery time.Time     `json:"estimated_delivery"`
	CreatedAt         time.Time     `json:"created_at"`
}

// SellerStatusDetail is one row of the per-seller breakdown served next to
// the lossy overall status.
type SellerStatusDetail struct {
	SellerID id.UserID    `json:"seller_id"`
	Status   Status       `json:"status"`
	Items    []OrderItem  `json:"items"`
	Summary  OrderSummary `json:"order_summary"`
}

// BuyerOrderView is the read-model for buyer-facing callers: the parent
// order plus the derived overall status and its breakdown.
type BuyerOrderView struct {
	BuyerOrder
	OverallStatus Status               `json:"overall_status"`
	StatusDetails []SellerStatusDetail `json:"status_details"`
}
