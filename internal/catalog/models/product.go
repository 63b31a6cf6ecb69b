package models

import (
	"encoding/json"
	"time"

	id "karigari/pkg/domain"
)

// ProductStatus gates what buyers can see.
type ProductStatus string

const (
	StatusActive   ProductStatus = "active"
	StatusInactive ProductStatus = "inactive"
)

// SellerIdentity is the set of legacy fields that may carry the seller's id.
// Older records were written by several generations of the upload flow, each
// using a different field name; none of them is individually trustworthy.
// The resolver package owns the precedence rules for reading these.
type SellerIdentity struct {
	SellerID  string `json:"sellerId,omitempty"`
	UserID    string `json:"userId,omitempty"`
	CreatedBy string `json:"createdBy,omitempty"`
	UID       string `json:"uid,omitempty"`
	Seller    string `json:"seller,omitempty"`
	ArtisanID string `json:"artisanId,omitempty"`
}

// Product is a catalog record. Unrecognized fields from schema-less upstream
// documents land in Extra untouched, so round-tripping a record never drops
// data and never feeds surprise fields into the resolver.
type Product struct {
	ID          id.ProductID  `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Price       int64         `json:"price"`
	Images      []string      `json:"images"`
	Category    string        `json:"category"`
	Status      ProductStatus `json:"status"`
	Identity    SellerIdentity
	Extra       map[string]json.RawMessage `json:"-"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// IsActive reports whether buyers may see and purchase this product.
func (p *Product) IsActive() bool {
	return p.Status == StatusActive || p.Status == ""
}

// knownProductKeys are fields mapped onto the struct; anything else is Extra.
var knownProductKeys = map[string]struct{}{
	"id": {}, "title": {}, "description": {}, "price": {}, "images": {},
	"category": {}, "status": {}, "created_at": {}, "updated_at": {},
	"sellerId": {}, "userId": {}, "createdBy": {}, "uid": {}, "seller": {}, "artisanId": {},
}

type productAlias struct {
	ID          id.ProductID  `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Price       int64         `json:"price"`
	Images      []string      `json:"images"`
	Category    string        `json:"category"`
	Status      ProductStatus `json:"status"`
	SellerIdentity
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UnmarshalJSON maps known fields onto the struct and preserves the rest in
// Extra.
func (p *Product) UnmarshalJSON(data []byte) error {
	var alias productAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Product{
		ID:          alias.ID,
		Title:       alias.Title,
		Description: alias.Description,
		Price:       alias.Price,
		Images:      alias.Images,
		Category:    alias.Category,
		Status:      alias.Status,
		Identity:    alias.SellerIdentity,
		CreatedAt:   alias.CreatedAt,
		UpdatedAt:   alias.UpdatedAt,
	}
	for k, v := range raw {
		if _, known := knownProductKeys[k]; known {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]json.RawMessage)
		}
		p.Extra[k] = v
	}
	return nil
}

// MarshalJSON re-emits known fields plus whatever landed in Extra.
func (p Product) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(p.Extra)+8)
	for k, v := range p.Extra {
		out[k] = v
	}
	base, err := json.Marshal(productAlias{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Price:          p.Price,
		Images:         p.Images,
		Category:       p.Category,
		Status:         p.Status,
		SellerIdentity: p.Identity,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	})
	if err != nil {
		return nil, err
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(base, &known); err != nil {
		return nil, err
	}
	for k, v := range known {
		out[k] = v
	}
	return json.Marshal(out)
}

// SellerInfo is the directory enrichment attached to listings so buyers see
// who made the item without a second lookup.
type SellerInfo struct {
	Name     string `json:"name"`
	ShopName string `json:"shop_name"`
	Location string `json:"location"`
	Verified bool   `json:"verified"`
}

// ResolvedProduct pairs a product with the outcome of seller resolution.
// SellerID is empty for orphaned products.
type ResolvedProduct struct {
	Product    Product    `json:"product"`
	SellerID   id.UserID  `json:"seller_id,omitempty"`
	SellerInfo SellerInfo `json:"seller_info"`
}
