// Package metrics collects authentication outcome counters and exposes them
// for Prometheus scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the HTTP layer reports to.
type Recorder interface {
	RecordOperation(operation, outcome string)
	RecordLatency(operation string, d time.Duration)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "league_auth_operations_total",
			Help: "Authentication operations by outcome.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "league_auth_operation_duration_seconds",
			Help:    "Authentication operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(c.operations, c.latency)
	return c
}

func (c *Collector) RecordOperation(operation, outcome string) {
	c.operations.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) RecordLatency(operation string, d time.Duration) {
	c.latency.WithLabelValues(operation).Observe(d.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop drops every observation.
type Nop struct{}

func (Nop) RecordOperation(string, string)      {}
func (Nop) RecordLatency(string, time.Duration) {}
