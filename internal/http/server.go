package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mauv0809/kingside/internal/config"
	"github.com/mauv0809/kingside/internal/tournament"
)

func NewServer(cfg config.Config, deps Dependencies) *Server {
	server := &Server{
		Cfg:            cfg,
		DB:             deps.DB,
		Tournaments:    tournament.New(deps.DB),
		Join:           deps.Join,
		Withdrawals:    deps.Withdrawals,
		Processor:      deps.Processor,
		Auth:           deps.Auth,
		Metrics:        deps.Metrics,
		MetricsHandler: deps.MetricsHandler,
		Notifier:       deps.Notifier,
		Inngest:        deps.Inngest,
		Router:         chi.NewRouter(),
		pubsub:         deps.PubSub,
		validate:       newValidator(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	s.Router.Use(middleware.RequestID)
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.Cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, s.requireAuth)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Get("/health", Chain(s.HealthCheckHandler(), paramsMiddleware).ServeHTTP)

	s.Router.Route("/api", func(r chi.Router) {
		r.Post("/verify-paystack", Chain(s.JoinTournamentHandler(), paramsMiddleware, s.requireAuth).ServeHTTP)
		r.Post("/payments/webhook", Chain(s.PaymentWebhookHandler(), paramsMiddleware).ServeHTTP)

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/banks", Chain(s.ListBanksHandler(), paramsMiddleware).ServeHTTP)
			r.Post("/verify-account", Chain(s.VerifyAccountHandler(), paramsMiddleware).ServeHTTP)
			r.Post("/withdraw", Chain(s.WithdrawHandler(), paramsMiddleware, s.requireAuth).ServeHTTP)
			r.Get("/{profileId}", Chain(s.WalletSummaryHandler(), paramsMiddleware, s.requireAuth).ServeHTTP)
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", Chain(s.ListTournamentsHandler(), paramsMiddleware).ServeHTTP)
			r.Post("/create", Chain(s.CreateTournamentHandler(), paramsMiddleware, s.requireAuth).ServeHTTP)
			r.Get("/{id}", Chain(s.GetTournamentHandler(), paramsMiddleware).ServeHTTP)
			r.Post("/{id}/leave", Chain(s.LeaveTournamentHandler(), paramsMiddleware, s.requireAuth).ServeHTTP)
			r.Post("/{id}/publish", Chain(s.PublishTournamentHandler(), paramsMiddleware, s.requireAuth).ServeHTTP)
			r.Post("/{id}/cancel", Chain(s.CancelTournamentHandler(), paramsMiddleware, s.requireAuth).ServeHTTP)
		})
		r.Get("/tournament-participants/{id}", Chain(s.ParticipantCountHandler(), paramsMiddleware).ServeHTTP)
		r.Get("/tournament-prize/{id}", Chain(s.PrizePoolHandler(), paramsMiddleware).ServeHTTP)

		if s.Inngest != nil {
			r.Handle("/inngest", s.Inngest.Serve())
		}
	})

	if s.Cfg.Slack.SigningSecret != "" {
		s.Router.Post("/slack/command/kingside", Chain(s.OperatorCommandHandler(), paramsMiddleware, s.slackVerificationMiddleware).ServeHTTP)
	}

	s.Router.Post("/pubsub/compensations", Chain(s.CompensationPushHandler(), paramsMiddleware).ServeHTTP)
	s.Router.Post("/process", Chain(s.ProcessTournamentsHandler(), paramsMiddleware).ServeHTTP)
	s.Router.Post("/process/compensations", Chain(s.ProcessCompensationsHandler(), paramsMiddleware).ServeHTTP)
	s.Router.Post("/process/withdrawals", Chain(s.FlagStaleWithdrawalsHandler(), paramsMiddleware).ServeHTTP)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
