package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the storefront's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "floryn",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "floryn",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "floryn",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	ordersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "floryn",
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Total number of committed orders.",
		},
	)

	checkoutFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "floryn",
			Subsystem: "orders",
			Name:      "checkout_failures_total",
			Help:      "Checkouts rejected or rolled back, by reason.",
		},
		[]string{"reason"},
	)

	statusUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "floryn",
			Subsystem: "orders",
			Name:      "status_updates_total",
			Help:      "Order status changes, by target status.",
		},
		[]string{"status"},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "floryn",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Order events handed to the broker, by routing key and outcome.",
		},
		[]string{"routing_key", "success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ordersCreated,
		checkoutFailures,
		statusUpdates,
		eventsPublished,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RequestStarted marks a request in flight and returns the func that ends it.
func RequestStarted() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// RecordHTTPRequest records one handled request. route is the matched route
// pattern, never the raw path, to keep label cardinality bounded.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordOrderCreated counts a committed checkout.
func RecordOrderCreated() {
	ordersCreated.Inc()
}

// RecordCheckoutFailure counts a checkout that did not produce an order.
func RecordCheckoutFailure(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	checkoutFailures.WithLabelValues(reason).Inc()
}

// RecordStatusUpdate counts an order moved to status.
func RecordStatusUpdate(status string) {
	statusUpdates.WithLabelValues(status).Inc()
}

// RecordEventPublished counts a broker publish attempt.
func RecordEventPublished(routingKey string, success bool) {
	eventsPublished.WithLabelValues(routingKey, strconv.FormatBool(success)).Inc()
}
