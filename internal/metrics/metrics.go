package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	auditRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crm_audit_entries_recorded_total",
		Help: "Total number of audit entries written",
	})
	auditFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crm_audit_record_failures_total",
		Help: "Total number of audit entries that could not be written",
	})
	trailsRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_decision_trails_recorded_total",
		Help: "Total number of decision trails recorded, by entity kind",
	}, []string{"kind"})
	trailFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_decision_trail_failures_total",
		Help: "Total number of decision trails that could not be recorded, by entity kind",
	}, []string{"kind"})
	rollbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_rollbacks_total",
		Help: "Rollback attempts by entity kind and outcome",
	}, []string{"kind", "outcome"})
	activeTrails = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crm_decision_trails_active",
		Help: "Decision trails that have not been rolled back",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		auditRecordedTotal,
		auditFailedTotal,
		trailsRecordedTotal,
		trailFailuresTotal,
		rollbacksTotal,
		activeTrails,
	)
}

// Handler exposes the collectors registered on registry.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// IncAuditRecorded increments the written audit entries counter.
func IncAuditRecorded() { auditRecordedTotal.Inc() }

// IncAuditFailed increments the failed audit writes counter.
func IncAuditFailed() { auditFailedTotal.Inc() }

// IncTrailRecorded increments the recorded trails counter for kind.
func IncTrailRecorded(kind string) { trailsRecordedTotal.WithLabelValues(kind).Inc() }

// IncTrailFailed increments the failed trail writes counter for kind.
func IncTrailFailed(kind string) { trailFailuresTotal.WithLabelValues(kind).Inc() }

// IncRollback records a rollback attempt outcome.
func IncRollback(kind, outcome string) { rollbacksTotal.WithLabelValues(kind, outcome).Inc() }

// SetActiveTrails sets the active trails gauge.
func SetActiveTrails(n int64) { activeTrails.Set(float64(n)) }
