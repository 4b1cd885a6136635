package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "catatan", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "catatan", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)

	// PageOperations counts page store operations by op (list_active, list_trashed, get,
	// create, update, trash, restore, purge) and outcome (ok, not_found, conflict, invalid, error).
	PageOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "catatan", Name: "page_operations_total", Help: "Page store operations by op and outcome."},
		[]string{"op", "outcome"},
	)

	AutosaveFlushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "catatan", Name: "autosave_flushes_total", Help: "Autosave flushes by trigger (timer|explicit) and result (ok|error)."},
		[]string{"trigger", "result"},
	)
	AutosaveEdits = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "catatan", Name: "autosave_edits_total", Help: "Local edits observed by autosave coalescers."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(PageOperations)
	reg.MustRegister(AutosaveFlushes)
	reg.MustRegister(AutosaveEdits)
}
