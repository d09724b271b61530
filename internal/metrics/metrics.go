// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the Prometheus implementation used by the HTTP layer and the classifier client.
type Collector struct {
	httpRequests       *prometheus.CounterVec
	httpLatency        *prometheus.HistogramVec
	classifierAttempts *prometheus.CounterVec
	classifierLatency  prometheus.Histogram
	scansRecorded      *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "currencyguard_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "currencyguard_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		classifierAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "currencyguard_classifier_attempts_total",
			Help: "Classifier attempts by outcome.",
		}, []string{"outcome"}),
		classifierLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "currencyguard_classifier_latency_seconds",
			Help:    "Classifier attempt latency in seconds.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		scansRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "currencyguard_scans_recorded_total",
			Help: "Scans written to the ledger by verdict.",
		}, []string{"verdict"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.classifierAttempts,
		c.classifierLatency,
		c.scansRecorded,
	)

	return c
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// RecordHTTPRequest records one served request.
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveClassifier records one classifier attempt.
func (c *Collector) ObserveClassifier(outcome string, duration time.Duration) {
	c.classifierAttempts.WithLabelValues(outcome).Inc()
	c.classifierLatency.Observe(duration.Seconds())
}

// RecordScan counts a scan written to the ledger.
func (c *Collector) RecordScan(verdict string) {
	c.scansRecorded.WithLabelValues(verdict).Inc()
}

// Handler returns the HTTP handler Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
