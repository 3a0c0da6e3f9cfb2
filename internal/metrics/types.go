package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	Joins              *prometheus.CounterVec
	Leaves             *prometheus.CounterVec
	RefundedKobo       prometheus.Counter
	Withdrawals        *prometheus.CounterVec
	GatewayDuration    *prometheus.HistogramVec
	Compensations      *prometheus.CounterVec
	StatusTransitions  *prometheus.CounterVec
	ProcessorRuns      *prometheus.CounterVec
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
