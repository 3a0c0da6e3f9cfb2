package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/inngest/inngestgo"
	"github.com/mauv0809/kingside/internal/auth"
	"github.com/mauv0809/kingside/internal/compensation"
	"github.com/mauv0809/kingside/internal/config"
	"github.com/mauv0809/kingside/internal/database"
	server "github.com/mauv0809/kingside/internal/http"
	"github.com/mauv0809/kingside/internal/inngest"
	"github.com/mauv0809/kingside/internal/join"
	"github.com/mauv0809/kingside/internal/lock"
	"github.com/mauv0809/kingside/internal/metrics"
	"github.com/mauv0809/kingside/internal/notifier/slack"
	"github.com/mauv0809/kingside/internal/paystack"
	"github.com/mauv0809/kingside/internal/processor"
	"github.com/mauv0809/kingside/internal/pubsub"
	"github.com/mauv0809/kingside/internal/scheduler"
	"github.com/mauv0809/kingside/internal/tournament"
	"github.com/mauv0809/kingside/internal/withdrawal"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	gateway := paystack.NewClient(cfg.Paystack.SecretKey, cfg.Paystack.BaseURL, metricsSvc)
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)

	pubsubClient, pubsubTeardown, err := pubsub.New(cfg.ProjectID)
	if err != nil {
		log.Fatalf("Failed to initialize pubsub: %s", err)
	}
	defer pubsubTeardown()

	var locker lock.Locker = lock.NewLocal()
	if cfg.RedisURL != "" {
		redisLock, err := lock.NewRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %s", err)
		}
		defer redisLock.Close()
		locker = redisLock
		log.Info("Using redis for join and withdrawal locks")
	}

	applier := compensation.NewApplier(db, metricsSvc)
	proc := processor.New(processor.Stores{
		Tournaments:   tournament.New(db),
		Compensations: compensation.New(db),
		Withdrawals:   withdrawal.NewStore(db),
	}, applier, notifier, metricsSvc, pubsubClient,
		processor.WithStaleWithdrawalAge(cfg.Processor.StaleWithdrawalAfter))

	var dispatcher compensation.Dispatcher = pubsub.NewDispatcher(pubsubClient)
	var inngestClient inngest.InngestClient
	if cfg.Inngest.Enabled() {
		inngestProvider, err := inngestgo.NewClient(inngestgo.ClientOpts{
			AppID:      cfg.Inngest.AppID,
			SigningKey: &cfg.Inngest.SigningKey,
			EventKey:   &cfg.Inngest.EventKey,
		})
		if err != nil {
			log.Fatalf("Failed to initialize inngest: %s", err)
		}
		inngestClient, err = inngest.New(inngestProvider, proc)
		if err != nil {
			log.Fatalf("Failed to register inngest functions: %s", err)
		}
		dispatcher = inngestClient
		log.Info("Compensations dispatched through Inngest", "appID", cfg.Inngest.AppID)
	}

	joinCoordinator := join.New(db, gateway, locker, applier, pubsubClient, metricsSvc, join.WithDispatcher(dispatcher))
	withdrawals := withdrawal.New(db, gateway, locker, applier, pubsubClient, metricsSvc, cfg.MinWithdrawal)

	sched, err := scheduler.New(proc, cfg.Processor.Interval)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %s", err)
	}
	sched.Start()
	defer func() {
		if err := sched.Shutdown(); err != nil {
			log.Error("Scheduler shutdown failed", "error", err)
		}
	}()

	s := server.NewServer(cfg, server.Dependencies{
		DB:             db,
		Join:           joinCoordinator,
		Withdrawals:    withdrawals,
		Processor:      proc,
		Auth:           auth.NewVerifier(cfg.Auth.JWTSecret),
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Notifier:       notifier,
		PubSub:         pubsubClient,
		Inngest:        inngestClient,
	})

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
