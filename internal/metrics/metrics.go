// Package metrics exposes Prometheus instrumentation for the API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inventory"

// Sale outcomes used as the "outcome" label.
const (
	OutcomeRecorded     = "recorded"
	OutcomeInvalid      = "invalid_amount"
	OutcomeNotFound     = "not_found"
	OutcomeInsufficient = "insufficient_stock"
	OutcomeDuplicate    = "duplicate"
	OutcomeError        = "error"
)

// Metrics holds the API's collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	SalesTotal prometheus.Counter
	SaleEvents *prometheus.CounterVec
	UnitsSold  prometheus.Counter
}

// New creates a registry with Go and process collectors plus the API metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Number of HTTP requests being served",
			},
		),
		SalesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sales_recorded_total",
				Help:      "Number of sales committed to the ledger",
			},
		),
		SaleEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sale_attempts_total",
				Help:      "Sale attempts by outcome",
			},
			[]string{"outcome"},
		),
		UnitsSold: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "units_sold_total",
				Help:      "Units moved from stock to sold",
			},
		),
	}
}

// ObserveSale records the outcome of one sale attempt.
func (m *Metrics) ObserveSale(outcome string, units int) {
	m.SaleEvents.WithLabelValues(outcome).Inc()
	if outcome == OutcomeRecorded {
		m.SalesTotal.Inc()
		m.UnitsSold.Add(float64(units))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
