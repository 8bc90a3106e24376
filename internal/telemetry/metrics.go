package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Business holds Prometheus metrics for business-level observability of the
// cart and checkout engine.
type Business struct {
	// Cart activity
	CartItemsAdded *prometheus.CounterVec
	CartUpdated    prometheus.Counter
	CartCleared    prometheus.Counter
	CartValue      prometheus.Histogram

	// Coupons and loyalty
	CouponApplied  *prometheus.CounterVec
	CouponRejected prometheus.Counter
	PointsRedeemed prometheus.Counter

	// Checkout funnel
	CheckoutStarted   prometheus.Counter
	CheckoutCompleted prometheus.Counter
	CheckoutFailed    *prometheus.CounterVec

	// Orders
	OrderValue     prometheus.Histogram
	OrderItemCount prometheus.Histogram

	// Catalog snapshot
	CatalogRefreshes       *prometheus.CounterVec
	CatalogRefreshDuration prometheus.Histogram
}

// NewBusiness creates and registers all business metrics.
func NewBusiness(namespace string) *Business {
	if namespace == "" {
		namespace = "embla"
	}

	subsystem := "business"

	return &Business{
		CartItemsAdded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_added_total",
				Help:      "Total add-to-cart actions",
			},
			[]string{"product_id"},
		),
		CartUpdated: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_updates_total",
				Help:      "Total quantity changes and removals",
			},
		),
		CartCleared: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_cleared_total",
				Help:      "Total cart clear actions",
			},
		),
		CartValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_value_cents",
				Help:      "Cart subtotal at checkout time",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 7),
			},
		),
		CouponApplied: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "coupon_applied_total",
				Help:      "Total successful coupon applications",
			},
			[]string{"code"},
		),
		CouponRejected: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "coupon_rejected_total",
				Help:      "Total rejected coupon codes",
			},
		),
		PointsRedeemed: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "points_redeemed_total",
				Help:      "Total loyalty points debited at checkout",
			},
		),
		CheckoutStarted: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_started_total",
				Help:      "Total checkout attempts entering Processing",
			},
		),
		CheckoutCompleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_completed_total",
				Help:      "Total successful checkouts",
			},
		),
		CheckoutFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "checkout_failed_total",
				Help:      "Total failed checkouts",
			},
			[]string{"step"}, // step: points_debit, handoff
		),
		OrderValue: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value_cents",
				Help:      "Final payable total of completed orders",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 7),
			},
		),
		OrderItemCount: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_item_count",
				Help:      "Number of line items in completed orders",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
			},
		),
		CatalogRefreshes: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "catalog_refreshes_total",
				Help:      "Total catalog snapshot refreshes by result",
			},
			[]string{"result"}, // result: ok, error
		),
		CatalogRefreshDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "catalog_refresh_duration_seconds",
				Help:      "Duration of catalog snapshot refreshes",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
	}
}
