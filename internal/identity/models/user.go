package models

import (
	"time"

	id "karigari/pkg/domain"
)

// Role distinguishes the two sides of the marketplace.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return r == RoleBuyer || r == RoleSeller
}

// User is a directory record. Sellers additionally carry shop fields used
// to enrich product listings and order snapshots.
type User struct {
	ID              id.UserID `json:"id"`
	Role            Role      `json:"role"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Address         string    `json:"address"`
	ShopName        string    `json:"shop_name,omitempty"`
	Location        string    `json:"location,omitempty"`
	ProfileComplete bool      `json:"profile_complete"`
	CreatedAt       time.Time `json:"created_at"`
}

// IsSeller reports whether this user may be attributed product revenue.
func (u *User) IsSeller() bool {
	return u != nil && u.Role == RoleSeller
}
