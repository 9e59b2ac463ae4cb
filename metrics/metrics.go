// Package metrics exposes Prometheus instrumentation for the capture and
// enforcement pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pktwall"

var (
	// PacketsCaptured counts records published into the ring per
	// capture interface.
	PacketsCaptured = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_captured_total",
			Help:      "Records published into the ring buffer.",
		},
		[]string{"interface"},
	)
	// RingFullDrops counts packets discarded because the ring was full.
	RingFullDrops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ring_full_drops_total",
			Help:      "Packets dropped on push into a full ring buffer.",
		},
	)
	// Decisions counts enforcement outcomes by action and rule.
	Decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Enforcement decisions by action and matching rule.",
		},
		[]string{"action", "rule"},
	)
	// Alerts counts records carrying the alert flag.
	Alerts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Records flagged by the capture source's alerting condition.",
		},
	)
	// FlowPolicies tracks the number of flow overrides installed.
	FlowPolicies = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "flow_policies",
			Help:      "Flow policy overrides currently installed.",
		},
	)
	// TransportErrors counts failures shipping decision events.
	TransportErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_errors_total",
			Help:      "Errors sending decision events to the transport.",
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(
		PacketsCaptured,
		RingFullDrops,
		Decisions,
		Alerts,
		FlowPolicies,
		TransportErrors,
	)
}
