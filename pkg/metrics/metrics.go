// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "notes_marketplace"

var (
	// OrdersCreated counts gateway orders persisted as pending purchases.
	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Purchases created in pending state",
	})

	// OrphanedGatewayOrders counts gateway orders minted upstream whose
	// purchase row could not be written.
	OrphanedGatewayOrders = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orphaned_gateway_orders_total",
		Help:      "Gateway orders created without a local purchase row",
	})

	// Verifications counts payment verifications by result.
	Verifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_verifications_total",
		Help:      "Payment verifications by result",
	}, []string{"result"})

	// StatusOverrides counts admin status changes by target status.
	StatusOverrides = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchase_status_overrides_total",
		Help:      "Admin purchase status overrides by target status",
	}, []string{"status"})

	// SyllabusLeads counts recorded syllabus downloads.
	SyllabusLeads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "syllabus_downloads_total",
		Help:      "Recorded syllabus download leads",
	})

	// StorageOperations counts object storage calls by operation and outcome.
	StorageOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "storage_operations_total",
		Help:      "Object storage operations",
	}, []string{"operation", "status"})

	// RequestDuration tracks HTTP latency.
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(
		OrdersCreated,
		OrphanedGatewayOrders,
		Verifications,
		StatusOverrides,
		SyllabusLeads,
		StorageOperations,
		RequestDuration,
	)
}
