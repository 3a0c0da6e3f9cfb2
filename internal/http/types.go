package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mauv0809/kingside/internal/auth"
	"github.com/mauv0809/kingside/internal/config"
	"github.com/mauv0809/kingside/internal/inngest"
	"github.com/mauv0809/kingside/internal/join"
	"github.com/mauv0809/kingside/internal/metrics"
	"github.com/mauv0809/kingside/internal/notifier"
	"github.com/mauv0809/kingside/internal/processor"
	"github.com/mauv0809/kingside/internal/pubsub"
	"github.com/mauv0809/kingside/internal/tournament"
	"github.com/mauv0809/kingside/internal/withdrawal"
)

type Server struct {
	Cfg            config.Config
	DB             *sql.DB
	Tournaments    tournament.Store
	Join           *join.Coordinator
	Withdrawals    *withdrawal.Service
	Processor      *processor.Processor
	Auth           *auth.Verifier
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Notifier       notifier.Notifier
	// Inngest is nil when durable workflows are not configured.
	Inngest  inngest.InngestClient
	Router   chi.Router
	pubsub   pubsub.PubSubClient
	validate *validator.Validate
}

// Dependencies are the collaborators a Server routes requests to.
type Dependencies struct {
	DB             *sql.DB
	Join           *join.Coordinator
	Withdrawals    *withdrawal.Service
	Processor      *processor.Processor
	Auth           *auth.Verifier
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Notifier       notifier.Notifier
	PubSub         pubsub.PubSubClient
	Inngest        inngest.InngestClient
}

// response is the envelope used by the join and wallet endpoints.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}
