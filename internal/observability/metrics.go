package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RelationshipOperations counts follow, request and block operations by outcome.
	RelationshipOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connecto_relationship_operations_total",
		Help: "Total relationship operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// VisibilityDenials counts visibility checks that refused access, by reason.
	VisibilityDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connecto_visibility_denials_total",
		Help: "Total visibility checks that denied access",
	}, []string{"check", "reason"})

	// NotificationsEmitted counts persisted notifications by type.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connecto_notifications_emitted_total",
		Help: "Total notifications persisted by type",
	}, []string{"type"})

	// NotificationFailures counts notification side effects that failed, by stage.
	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connecto_notification_failures_total",
		Help: "Total notification persistence or publish failures",
	}, []string{"stage"})

	// WebSocketConnections tracks open realtime notification sockets.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "connecto_websocket_connections",
		Help: "Number of open notification websocket connections",
	})

	// WebSocketDrops counts outbound socket messages dropped by reason.
	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connecto_websocket_dropped_messages_total",
		Help: "Total websocket messages dropped before delivery",
	}, []string{"reason"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "connecto_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// RecordRelationship increments the relationship counter. A nil error counts as "ok",
// otherwise the outcome is the error code supplied by the caller.
func RecordRelationship(operation, outcome string) {
	if outcome == "" {
		outcome = "ok"
	}
	RelationshipOperations.WithLabelValues(operation, outcome).Inc()
}

// TrackQuery returns a func that records the elapsed query time when called.
//
//	defer observability.TrackQuery("select", "follows")()
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
