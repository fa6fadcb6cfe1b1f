// Package prometheus exposes the service's operational metrics.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crawlmeter/crawlmeter/internal/application/valuation"
)

const namespace = "crawlmeter"

var (
	httpDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	valueBuckets        = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 25}
)

// Metrics holds every collector the service registers. Each instance owns
// its registry, so tests can create as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	DetectionsTotal     *prometheus.CounterVec
	EstimatedValue      *prometheus.HistogramVec
	AlertsTotal         *prometheus.CounterVec
	EventsPublished     *prometheus.CounterVec
	EventsConsumed      *prometheus.CounterVec
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics builds and registers all collectors on a fresh registry,
// alongside the standard Go and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		DetectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Processed access detections by actor and bot verdict.",
		}, []string{"actor", "is_bot"}),
		EstimatedValue: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "estimated_value_usd",
			Help:      "Estimated content value per detection in USD.",
			Buckets:   valueBuckets,
		}, []string{"actor"}),
		AlertsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "valuation_alerts_total",
			Help:      "High-value detection alerts fired.",
		}, []string{"actor"}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Events published to Kafka by topic and result.",
		}, []string{"topic", "result"}),
		EventsConsumed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_consumed_total",
			Help:      "Events consumed from Kafka by topic and result.",
		}, []string{"topic", "result"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   httpDurationBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveDetection records one processed detection.
func (m *Metrics) ObserveDetection(d *valuation.Detection) {
	actor := d.Classification.ActorName
	m.DetectionsTotal.WithLabelValues(actor, strconv.FormatBool(d.Classification.IsBot)).Inc()
	m.EstimatedValue.WithLabelValues(actor).Observe(d.Valuation.EstimatedValue.InexactFloat64())
}

// ObserveAlert records one fired alert.
func (m *Metrics) ObserveAlert(d *valuation.Detection) {
	m.AlertsTotal.WithLabelValues(d.Classification.ActorName).Inc()
}

// ObserveHTTPRequest records one completed HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
