// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/replyloop-ai/messenger-platform/internal/config"
	"github.com/replyloop-ai/messenger-platform/internal/events"
	"github.com/replyloop-ai/messenger-platform/internal/handler"
	"github.com/replyloop-ai/messenger-platform/internal/messenger"
	"github.com/replyloop-ai/messenger-platform/internal/middleware"
	"github.com/replyloop-ai/messenger-platform/internal/pipeline"
	"github.com/replyloop-ai/messenger-platform/internal/store"
	"github.com/replyloop-ai/messenger-platform/pkg/logger"
	"github.com/replyloop-ai/messenger-platform/pkg/tracing"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting API server")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "messenger-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Database
	db, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	if err := store.Migrate(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		log.Error("failed to run migrations", zap.Error(err))
		os.Exit(1)
	}

	// NATS is optional; exchange fan-out is skipped when no URL is configured.
	var natsClient *events.Client
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		natsClient, err = events.Connect(events.Config{
			URL:   cfg.NATSURL,
			Token: cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer natsClient.Close()

		publisher = events.NewPublisher(natsClient)
		if err := publisher.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure exchanges stream", zap.Error(err))
			os.Exit(1)
		}
	}

	// Stores
	pageStore := store.NewPageStore(db.Pool)
	ruleStore := store.NewRuleStore(db.Pool)
	aiConfigStore := store.NewAIConfigStore(db.Pool)
	historyStore := store.NewHistoryStore(db.Pool)

	// Outbound Messenger gateway
	gateway := messenger.NewClient(cfg.GraphAPIBaseURL, cfg.SendTimeout)

	// Message pipeline
	var exchangePublisher pipeline.ExchangePublisher
	if publisher != nil {
		exchangePublisher = publisher
	}
	resolver := pipeline.NewResolver(
		pageStore,
		ruleStore,
		aiConfigStore,
		historyStore,
		gateway,
		exchangePublisher,
		cfg.ProviderTimeout,
		log,
	)
	dispatcher := pipeline.NewDispatcher(resolver)

	// Handlers
	healthHandler := handler.NewHealthHandler(db, natsClient)
	webhookHandler := handler.NewWebhookHandler(cfg.WebhookVerifyToken, dispatcher, log)
	pageHandler := handler.NewPageHandler(pageStore, log)
	ruleHandler := handler.NewRuleHandler(ruleStore, pageStore, log)
	aiConfigHandler := handler.NewAIConfigHandler(aiConfigStore, pageStore, log)
	historyHandler := handler.NewHistoryHandler(historyStore, pageStore, log)

	// Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Webhook endpoints. The platform sends these unauthenticated; GET is the
	// subscription handshake, POST carries message events. Never rate limited.
	r.Get("/webhook", webhookHandler.Verify)
	r.Post("/webhook", webhookHandler.Deliver)

	// Management API with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/pages", func(r chi.Router) {
			r.Post("/", pageHandler.Connect)
			r.Get("/", pageHandler.List)

			r.Route("/{pageID}", func(r chi.Router) {
				r.Delete("/", pageHandler.Disconnect)

				r.Post("/rules", ruleHandler.Create)
				r.Get("/rules", ruleHandler.List)

				r.Put("/ai-config", aiConfigHandler.Upsert)
				r.Get("/ai-config", aiConfigHandler.Get)
				r.Delete("/ai-config", aiConfigHandler.Deactivate)

				r.Get("/history", historyHandler.List)
			})
		})

		r.Route("/rules/{ruleID}", func(r chi.Router) {
			r.Put("/", ruleHandler.Update)
			r.Delete("/", ruleHandler.Delete)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.DrainTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	// Let in-flight webhook events finish resolving before exit.
	if err := dispatcher.Drain(shutdownCtx); err != nil {
		log.Warn("event drain incomplete", zap.Error(err))
	}

	log.Info("server stopped")
}
