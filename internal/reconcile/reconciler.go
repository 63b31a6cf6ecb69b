// Package reconcile backfills the canonical seller id on catalog records
// that predate single-field attribution. It is an offline batch pass and
// deliberately conservative: a stored seller id that validates against the
// directory is never overwritten, and a product that resolves to nothing is
// reported, not guessed at.
package reconcile

import (
	"context"
	"log/slog"
	"strings"
	"time"

	catalogmodels "karigari/internal/catalog/models"
	"karigari/internal/catalog/resolver"
	"karigari/internal/platform/metrics"
	id "karigari/pkg/domain"
	dErrors "karigari/pkg/domain-errors"
)

// Catalog is the product access the reconciler needs.
type Catalog interface {
	List(ctx context.Context) ([]*catalogmodels.Product, error)
	SetSellerID(ctx context.Context, productID id.ProductID, sellerID id.UserID, now time.Time) error
}

// Report summarizes one reconciliation pass. A clean catalog yields
// Fixed == 0 on every subsequent run.
type Report struct {
	Inspected         int
	AlreadyAttributed int
	Fixed             int
	Unfixable         int
	DryRun            bool
}

type Reconciler struct {
	catalog  Catalog
	resolver *resolver.Resolver
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

type Option func(*Reconciler)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

// WithClock fixes the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

func New(catalog Catalog, res *resolver.Resolver, opts ...Option) (*Reconciler, error) {
	if catalog == nil || res == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "reconciler requires a catalog and a resolver")
	}
	r := &Reconciler{
		catalog:  catalog,
		resolver: res,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run walks the whole catalog once. Every product goes through the resolver,
// so a stored seller id only counts as attributed when it still validates
// against the directory; a stale id with a valid lower-precedence candidate
// is repaired, one with no valid candidate is reported as unfixable.
// Directory failures abort the pass; a partial pass that misclassified
// products as orphaned would be worse than no pass.
func (r *Reconciler) Run(ctx context.Context, dryRun bool) (*Report, error) {
	products, err := r.catalog.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list products")
	}

	report := &Report{DryRun: dryRun}
	now := r.now().UTC()
	for _, product := range products {
		report.Inspected++
		stored := strings.TrimSpace(product.Identity.SellerID)

		sellerID, _, err := r.resolver.Resolve(ctx, *product)
		if resolver.IsOrphaned(err) {
			report.Unfixable++
			if attributed(stored) {
				r.logger.Warn("stored seller id is invalid and no candidate validates",
					"product_id", product.ID, "stored_seller_id", stored)
			} else {
				r.logger.Warn("product has no resolvable seller", "product_id", product.ID)
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		if id.UserID(stored) == sellerID {
			report.AlreadyAttributed++
			continue
		}

		if !dryRun {
			if err := r.catalog.SetSellerID(ctx, product.ID, sellerID, now); err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "backfill seller id").WithDetails(map[string]any{
					"product_id": product.ID.String(),
				})
			}
			if r.metrics != nil {
				r.metrics.ReconcileFixes.Inc()
			}
		}
		report.Fixed++
		r.logger.Info("seller id backfilled", "product_id", product.ID,
			"seller_id", sellerID, "stored_seller_id", stored, "dry_run", dryRun)
	}
	return report, nil
}

// attributed reports whether the stored canonical field carried a plausible
// id at all. Stringified-null artifacts count as missing; it only picks the
// log line for unfixable products, validity is the resolver's call.
func attributed(raw string) bool {
	v := strings.TrimSpace(raw)
	return v != "" && v != "undefined" && v != "null"
}
