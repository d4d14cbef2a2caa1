// Package metrics holds the Prometheus instruments for finmcp.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the instruments on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ToolCalls          *prometheus.CounterVec
	ToolDuration       *prometheus.HistogramVec
	GuardrailDecisions *prometheus.CounterVec
	ProviderFetches    *prometheus.HistogramVec
}

// New creates and registers all instruments.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finmcp_tool_calls_total",
			Help: "Tool invocations by tool and outcome (ok or error kind)",
		}, []string{"tool", "outcome"}),
		ToolDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "finmcp_tool_duration_seconds",
			Help:    "Tool latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		GuardrailDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "finmcp_guardrail_decisions_total",
			Help: "Guardrail admission decisions by tool and outcome",
		}, []string{"tool", "outcome"}),
		ProviderFetches: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "finmcp_provider_fetch_seconds",
			Help:    "Market-data fetch latency by operation and outcome",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation", "outcome"}),
	}
}

// ObserveTool records one tool call.
func (m *Metrics) ObserveTool(tool, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveGuardrail records one admission decision.
func (m *Metrics) ObserveGuardrail(tool, outcome string) {
	if m == nil {
		return
	}
	m.GuardrailDecisions.WithLabelValues(tool, outcome).Inc()
}

// ObserveFetch records one provider round trip.
func (m *Metrics) ObserveFetch(operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ProviderFetches.WithLabelValues(operation, outcome).Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
