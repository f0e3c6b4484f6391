package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Management operations by outcome (success or error kind)
	OperationsTotal *prometheus.CounterVec

	// Authorization denials by permission name
	AuthzDeniedTotal *prometheus.CounterVec

	// Listing cache
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Revalidation signals by tag
	RevalidationsTotal *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mqk_operations_total",
				Help: "Total number of management operations",
			},
			[]string{"operation", "outcome"},
		),
		AuthzDeniedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mqk_authz_denied_total",
				Help: "Total number of requests denied for a missing permission",
			},
			[]string{"permission"},
		),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mqk_cache_hits_total",
				Help: "Total number of listing cache hits",
			},
			[]string{"tag"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mqk_cache_misses_total",
				Help: "Total number of listing cache misses",
			},
			[]string{"tag"},
		),
		RevalidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mqk_revalidations_total",
				Help: "Total number of revalidation signals",
			},
			[]string{"tag", "source"},
		),
	}

	registry.MustRegister(
		m.OperationsTotal,
		m.AuthzDeniedTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.RevalidationsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordOperation counts one management operation.
func (m *Metrics) RecordOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) RecordDenied(permission string) {
	if m == nil {
		return
	}
	m.AuthzDeniedTotal.WithLabelValues(permission).Inc()
}

func (m *Metrics) RecordCache(tag string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(tag).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(tag).Inc()
}

func (m *Metrics) RecordRevalidation(tag, source string) {
	if m == nil {
		return
	}
	m.RevalidationsTotal.WithLabelValues(tag, source).Inc()
}

// Handler exposes the registry in the Prometheus text format as a fiber handler.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
