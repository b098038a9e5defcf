// Package main is the entry point for the chat gateway API server.
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
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/glimmerlabs/chat-gateway/internal/chat"
	"github.com/glimmerlabs/chat-gateway/internal/config"
	"github.com/glimmerlabs/chat-gateway/internal/events"
	"github.com/glimmerlabs/chat-gateway/internal/handler"
	"github.com/glimmerlabs/chat-gateway/internal/llm"
	"github.com/glimmerlabs/chat-gateway/internal/middleware"
	"github.com/glimmerlabs/chat-gateway/internal/session"
	"github.com/glimmerlabs/chat-gateway/pkg/logger"
	"github.com/glimmerlabs/chat-gateway/pkg/tracing"
)

func main() {
	// Load configuration (.env is optional)
	_ = godotenv.Load()
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting chat gateway", zap.String("provider", cfg.Provider))

	// Initialize tracing if enabled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "chat-gateway", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect the optional event mirror
	var publisher events.Publisher = events.NopPublisher{}
	var busChecker handler.BusChecker
	if cfg.NATSURL != "" {
		conn, err := events.Connect(events.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer conn.Close()
		publisher = events.NewNATSPublisher(conn)
		busChecker = conn
	}

	// Initialize the streaming provider
	llmClient, err := llm.NewClient(ctx, llm.Provider(cfg.Provider), cfg.ProviderAPIKey())
	if err != nil {
		log.Error("failed to create LLM client",
			zap.String("provider", cfg.Provider),
			zap.Error(err),
		)
		os.Exit(1)
	}

	// Session registry with idle sweep
	registry := session.NewRegistry(cfg.SessionTTL, log)
	go registry.Run(ctx, cfg.SweepInterval)

	// Turn orchestrator
	orchestrator := chat.NewOrchestrator(llmClient, cfg.Model, publisher, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(busChecker)
	sessionHandler := handler.NewSessionHandler(registry, cfg.JWTSecret, cfg.SessionTTL, log)
	settingsHandler := handler.NewSettingsHandler(registry, log)
	chatHandler := handler.NewChatHandler(orchestrator, registry, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS())

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Opening a session needs no token; rate limit by caller address.
		r.With(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow)).
			Post("/sessions", sessionHandler.Create)

		r.Route("/session", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))
			r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

			r.Get("/", sessionHandler.Get)
			r.Delete("/", sessionHandler.Delete)
			r.Post("/clear", sessionHandler.Clear)

			r.Get("/settings", settingsHandler.Get)
			r.Put("/settings", settingsHandler.Update)

			r.Post("/chat", chatHandler.Stream)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
