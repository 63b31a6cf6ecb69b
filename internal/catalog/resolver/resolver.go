// Package resolver owns seller attribution for catalog records.
//
// Legacy products carry up to six overlapping identity fields written by
// different generations of the upload flow. Attribution is revenue-bearing,
// so resolution follows one fixed precedence list rather than "first truthy
// field" checks scattered across call sites, and every candidate must
// validate against a seller-role directory record before it is trusted.
package resolver

import (
	"context"
	"strings"

	catalogmodels "karigari/internal/catalog/models"
	identitymodels "karigari/internal/identity/models"
	id "karigari/pkg/domain"
	dErrors "karigari/pkg/domain-errors"
)

// Directory is the identity lookup the resolver validates candidates against.
// Get returns nil (no error) for unknown ids; errors mean the lookup itself
// failed and the caller may retry.
type Directory interface {
	Get(ctx context.Context, userID id.UserID) (*identitymodels.User, error)
}

// Resolver validates candidate seller ids against the user directory.
type Resolver struct {
	directory Directory
}

func New(directory Directory) *Resolver {
	return &Resolver{directory: directory}
}

// Candidates returns the identity fields in precedence order. Values that
// are blank or one of the stringified-null artifacts from the legacy
// frontend are dropped here so they never reach the directory.
func Candidates(identity catalogmodels.SellerIdentity) []id.UserID {
	raw := []string{
		identity.SellerID,
		identity.UserID,
		identity.CreatedBy,
		identity.UID,
		identity.Seller,
		identity.ArtisanID,
	}
	out := make([]id.UserID, 0, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" || v == "undefined" || v == "null" {
			continue
		}
		out = append(out, id.UserID(v))
	}
	return out
}

// Resolve returns the highest-precedence candidate that validates to an
// existing seller-role user, together with the seller record.
//
// A product with no valid candidate is orphaned: the error carries
// CodeNotFound and the caller recovers by exclusion. A directory failure is
// returned as CodeInternal and is retryable; it never downgrades to
// "orphaned", since that would silently mis-attribute or drop revenue.
func (r *Resolver) Resolve(ctx context.Context, product catalogmodels.Product) (id.UserID, *identitymodels.User, error) {
	for _, candidate := range Candidates(product.Identity) {
		user, err := r.directory.Get(ctx, candidate)
		if err != nil {
			return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "seller lookup failed")
		}
		if user.IsSeller() {
			return candidate, user, nil
		}
		// Unknown user or non-seller role: discard and keep walking the list.
	}
	return "", nil, dErrors.New(dErrors.CodeNotFound, "no valid seller for product").WithDetails(map[string]any{
		"product_id": product.ID.String(),
	})
}

// IsOrphaned reports whether err marks a product with no resolvable seller,
// as opposed to a retryable lookup failure.
func IsOrphaned(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeNotFound)
}
