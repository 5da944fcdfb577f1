// Package metrics exposes the prometheus counters the workflow core
// increments: visit transitions, optimistic-write conflicts and medication
// gate denials.
package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the registry and the workflow counters.
type Metrics struct {
	registry *prometheus.Registry

	VisitTransitions *prometheus.CounterVec
	WriteConflicts   prometheus.Counter
	GateDenials      *prometheus.CounterVec
}

// New builds a Metrics with its own registry, so tests can instantiate it
// without global-collector collisions.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		VisitTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinicore_visit_transitions_total",
			Help: "Visit status transitions applied by the state machine.",
		}, []string{"from", "to"}),
		WriteConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clinicore_write_conflicts_total",
			Help: "Optimistic-concurrency write conflicts returned to callers.",
		}),
		GateDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinicore_gate_denials_total",
			Help: "Medication gate denials by outstanding order type.",
		}, []string{"order_type"}),
	}
	m.registry.MustRegister(m.VisitTransitions, m.WriteConflicts, m.GateDenials)
	return m
}

// Handler serves the prometheus text exposition for this registry.
func (m *Metrics) Handler() echo.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c echo.Context) error {
		h.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}

// RecordTransition counts one visit status transition.
func (m *Metrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.VisitTransitions.WithLabelValues(from, to).Inc()
}

// RecordConflict counts one optimistic write conflict.
func (m *Metrics) RecordConflict() {
	if m == nil {
		return
	}
	m.WriteConflicts.Inc()
}

// RecordGateDenial counts one medication gate denial.
func (m *Metrics) RecordGateDenial(orderType string) {
	if m == nil {
		return
	}
	m.GateDenials.WithLabelValues(orderType).Inc()
}
