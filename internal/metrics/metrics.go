package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	/* Tenant routing */
	tenantConnectionsOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_events_tenant_connections_opened_total",
			Help: "Tenant database connections opened by the registry",
		},
		[]string{"tenant"},
	)

	tenantConnectionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_events_tenant_connection_failures_total",
			Help: "Failed attempts to open a tenant database connection",
		},
		[]string{"tenant"},
	)

	storageClientsLive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campus_events_storage_clients_live",
			Help: "Storage clients currently open, one per tenant storage URI",
		},
	)

	modelRegistrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_events_model_registrations_total",
			Help: "Schema registrations performed per entity",
		},
		[]string{"entity"},
	)

	/* Approval workflow */
	approvalTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_events_approval_transitions_total",
			Help: "Approval transitions by action and outcome",
		},
		[]string{"action", "outcome"},
	)
)

func RecordConnectionOpened(tenant string) {
	tenantConnectionsOpened.WithLabelValues(tenant).Inc()
}

func RecordConnectionFailure(tenant string) {
	tenantConnectionFailures.WithLabelValues(tenant).Inc()
}

func RecordClientOpened() {
	storageClientsLive.Inc()
}

func RecordClientClosed() {
	storageClientsLive.Dec()
}

func RecordModelRegistration(entity string) {
	modelRegistrations.WithLabelValues(entity).Inc()
}

// RecordApprovalTransition counts approve/reject/comment attempts; outcome is
// "ok" or the error kind that stopped the transition.
func RecordApprovalTransition(action, outcome string) {
	approvalTransitions.WithLabelValues(action, outcome).Inc()
}
