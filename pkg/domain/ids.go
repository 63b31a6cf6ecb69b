// Package domain defines typed identifiers shared across verticals.
//
// The upstream catalog and identity records use opaque string document ids,
// so these are string-based types rather than UUIDs. Distinct types keep a
// buyer id from ever being passed where a product id is expected.
package domain

import (
	"strings"

	dErrors "karigari/pkg/domain-errors"
)

// UserID identifies a user (buyer or seller) in the identity directory.
type UserID string

// ProductID identifies a catalog product.
type ProductID string

// OrderID identifies a buyer-facing parent order.
type OrderID string

// SellerOrderID identifies a per-seller child order. It is derived, not
// random: {parentOrderID}_{sellerID}, which makes child creation idempotent.
type SellerOrderID string

// ChildOrderID derives the deterministic child id for a (parent, seller) pair.
func ChildOrderID(parent OrderID, seller UserID) SellerOrderID {
	return SellerOrderID(string(parent) + "_" + string(seller))
}

func (id UserID) IsEmpty() bool        { return strings.TrimSpace(string(id)) == "" }
func (id ProductID) IsEmpty() bool     { return strings.TrimSpace(string(id)) == "" }
func (id OrderID) IsEmpty() bool       { return strings.TrimSpace(string(id)) == "" }
func (id SellerOrderID) IsEmpty() bool { return strings.TrimSpace(string(id)) == "" }

func (id UserID) String() string        { return string(id) }
func (id ProductID) String() string     { return string(id) }
func (id OrderID) String() string       { return string(id) }
func (id SellerOrderID) String() string { return string(id) }

// ParseUserID validates an id arriving at a trust boundary.
func ParseUserID(s string) (UserID, error) {
	id := UserID(strings.TrimSpace(s))
	if id.IsEmpty() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id cannot be empty")
	}
	return id, nil
}

// ParseProductID validates an id arriving at a trust boundary.
func ParseProductID(s string) (ProductID, error) {
	id := ProductID(strings.TrimSpace(s))
	if id.IsEmpty() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "product id cannot be empty")
	}
	return id, nil
}

// ParseOrderID validates an id arriving at a trust boundary.
func ParseOrderID(s string) (OrderID, error) {
	id := OrderID(strings.TrimSpace(s))
	if id.IsEmpty() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "order id cannot be empty")
	}
	return id, nil
}
