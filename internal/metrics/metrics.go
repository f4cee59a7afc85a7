package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CartOps counts coordinator operations by outcome, as seen at the HTTP
// layer. Outcomes are ok, insufficient_stock, not_found, invalid and error.
var CartOps = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "foodiehub",
		Name:      "cart_operations_total",
		Help:      "Cart and restock operations by kind and outcome.",
	},
	[]string{"op", "outcome"},
)

// RequestDuration observes HTTP latency. Paths carry record ids, so the
// labels stick to method and status to keep cardinality bounded.
var RequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "foodiehub",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "status"},
)
