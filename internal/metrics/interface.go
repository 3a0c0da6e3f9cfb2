package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncJoin(method, outcome string)
	IncLeave(outcome string)
	AddRefunded(amount int64)
	IncWithdrawal(outcome string)
	ObserveGatewayDuration(operation string, seconds float64)
	IncCompensation(kind, outcome string)
	IncStatusTransition(status string)
	IncProcessorRuns(job string)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
