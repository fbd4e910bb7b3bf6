// Package metrics wraps the Prometheus counters and gauges the
// scheduler and delegates report through (section 11 of the expanded
// spec): trimmed from the teacher's much larger observability package
// down to what the scheduler, evaluator, and delegates actually emit.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects AgeRun's runtime counters. A nil *Metrics is valid
// and makes every recording method a no-op, mirroring the teacher's
// disabled-by-default pattern (pkg/observability.Metrics).
type Metrics struct {
	registry *prometheus.Registry

	messagesProcessed *prometheus.CounterVec
	evaluatorFailures *prometheus.CounterVec
	parseErrors       prometheus.Counter
	delegateResponses *prometheus.CounterVec
	spawns            prometheus.Counter
	destroys          prometheus.Counter
	queueDepth        prometheus.Gauge
}

// New creates an enabled Metrics instance with its own private registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.messagesProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agerun",
		Subsystem: "system",
		Name:      "messages_processed_total",
		Help:      "Total number of messages processed by the scheduler.",
	}, []string{"agent_id"})

	m.evaluatorFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agerun",
		Subsystem: "evaluator",
		Name:      "failures_total",
		Help:      "Total number of instruction evaluation failures, by instruction kind.",
	}, []string{"kind"})

	m.parseErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "agerun",
		Subsystem: "method",
		Name:      "parse_errors_total",
		Help:      "Total number of method compile/parse failures.",
	})

	m.delegateResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agerun",
		Subsystem: "delegate",
		Name:      "responses_total",
		Help:      "Total number of delegate responses, by delegate type and status.",
	}, []string{"type", "status"})

	m.spawns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "agerun",
		Subsystem: "agent",
		Name:      "spawned_total",
		Help:      "Total number of agents spawned.",
	})

	m.destroys = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "agerun",
		Subsystem: "agent",
		Name:      "destroyed_total",
		Help:      "Total number of agents destroyed.",
	})

	m.queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "agerun",
		Subsystem: "system",
		Name:      "queue_depth",
		Help:      "Total number of messages currently queued across all agents.",
	})

	m.registry.MustRegister(
		m.messagesProcessed, m.evaluatorFailures, m.parseErrors,
		m.delegateResponses, m.spawns, m.destroys, m.queueDepth,
	)
	return m
}

// RecordMessageProcessed increments the per-agent processed counter.
func (m *Metrics) RecordMessageProcessed(agentID string) {
	if m == nil {
		return
	}
	m.messagesProcessed.WithLabelValues(agentID).Inc()
}

// RecordEvaluatorFailure increments the per-kind evaluator failure counter.
func (m *Metrics) RecordEvaluatorFailure(kind string) {
	if m == nil {
		return
	}
	m.evaluatorFailures.WithLabelValues(kind).Inc()
}

// RecordParseError increments the method parse-failure counter.
func (m *Metrics) RecordParseError() {
	if m == nil {
		return
	}
	m.parseErrors.Inc()
}

// RecordDelegateResponse increments the per-type/status delegate response counter.
func (m *Metrics) RecordDelegateResponse(delegateType, status string) {
	if m == nil {
		return
	}
	m.delegateResponses.WithLabelValues(delegateType, status).Inc()
}

// RecordSpawn increments the agents-spawned counter.
func (m *Metrics) RecordSpawn() {
	if m == nil {
		return
	}
	m.spawns.Inc()
}

// RecordDestroy increments the agents-destroyed counter.
func (m *Metrics) RecordDestroy() {
	if m == nil {
		return
	}
	m.destroys.Inc()
}

// SetQueueDepth sets the current total queue depth gauge.
func (m *Metrics) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

// Handler returns the Prometheus scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
