package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	OrdersPlaced         prometheus.Counter
	SellerOrdersCreated  prometheus.Counter
	CheckoutFailures     prometheus.Counter
	CheckoutItemsSkipped prometheus.Counter
	CheckoutDuration     prometheus.Histogram
	StatusTransitions    *prometheus.CounterVec
	ReconcileFixes       prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		OrdersPlaced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "karigari_orders_placed_total",
			Help: "Total number of buyer orders successfully placed",
		}),
		SellerOrdersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "karigari_seller_orders_created_total",
			Help: "Total number of per-seller child orders created",
		}),
		CheckoutFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "karigari_checkout_failures_total",
			Help: "Total number of checkouts that failed outright",
		}),
		CheckoutItemsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "karigari_checkout_items_skipped_total",
			Help: "Total number of cart items excluded from checkout for lacking a valid seller",
		}),
		CheckoutDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "karigari_checkout_duration_seconds",
			Help:    "End to end checkout latency",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "karigari_seller_order_status_transitions_total",
			Help: "Seller order status transitions, labeled by target status",
		}, []string{"to"}),
		ReconcileFixes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "karigari_reconcile_fixes_total",
			Help: "Total number of products whose seller id was backfilled",
		}),
	}
}

// ObserveCheckout records the duration of one checkout attempt.
func (m *Metrics) ObserveCheckout(d time.Duration) {
	m.CheckoutDuration.Observe(d.Seconds())
}

// IncrementStatusTransition records one seller order status change.
func (m *Metrics) IncrementStatusTransition(to string) {
	m.StatusTransitions.WithLabelValues(to).Inc()
}
