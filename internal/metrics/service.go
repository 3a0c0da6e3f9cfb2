package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		Joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kingside_joins_total",
			Help: "Tournament join attempts by payment method and outcome.",
		}, []string{"method", "outcome"}),
		Leaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kingside_leaves_total",
			Help: "Tournament leave attempts by outcome.",
		}, []string{"outcome"}),
		RefundedKobo: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kingside_refunded_kobo_total",
			Help: "Total amount refunded to wallets, in kobo.",
		}),
		Withdrawals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kingside_withdrawals_total",
			Help: "Wallet withdrawal attempts by outcome.",
		}, []string{"outcome"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kingside_gateway_request_duration_seconds",
			Help:    "Duration of payment gateway calls.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		Compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kingside_compensations_total",
			Help: "Compensation applications by kind and outcome.",
		}, []string{"kind", "outcome"}),
		StatusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kingside_tournament_status_transitions_total",
			Help: "Persisted tournament status transitions by target status.",
		}, []string{"status"}),
		ProcessorRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kingside_processor_runs_total",
			Help: "The total number of times each processor job has run.",
		}, []string{"job"}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kingside_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kingside_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kingside_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.Joins,
		s.Leaves,
		s.RefundedKobo,
		s.Withdrawals,
		s.GatewayDuration,
		s.Compensations,
		s.StatusTransitions,
		s.ProcessorRuns,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncJoin(method, outcome string) {
	s.Joins.WithLabelValues(method, outcome).Inc()
}

func (s *Service) IncLeave(outcome string) {
	s.Leaves.WithLabelValues(outcome).Inc()
}

func (s *Service) AddRefunded(amount int64) {
	if amount > 0 {
		s.RefundedKobo.Add(float64(amount))
	}
}

func (s *Service) IncWithdrawal(outcome string) {
	s.Withdrawals.WithLabelValues(outcome).Inc()
}

func (s *Service) ObserveGatewayDuration(operation string, seconds float64) {
	s.GatewayDuration.WithLabelValues(operation).Observe(seconds)
}

func (s *Service) IncCompensation(kind, outcome string) {
	s.Compensations.WithLabelValues(kind, outcome).Inc()
}

func (s *Service) IncStatusTransition(status string) {
	s.StatusTransitions.WithLabelValues(status).Inc()
}

func (s *Service) IncProcessorRuns(job string) {
	s.ProcessorRuns.WithLabelValues(job).Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
