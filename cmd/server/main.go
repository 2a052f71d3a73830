// CareerCompass - career assessment server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ashureev/careercompass/internal/api"
	"github.com/ashureev/careercompass/internal/assessment"
	"github.com/ashureev/careercompass/internal/catalog"
	"github.com/ashureev/careercompass/internal/config"
	"github.com/ashureev/careercompass/internal/health"
	"github.com/ashureev/careercompass/internal/identity"
	"github.com/ashureev/careercompass/internal/middleware"
	"github.com/ashureev/careercompass/internal/realtime"
	"github.com/ashureev/careercompass/internal/shell"
	"github.com/ashureev/careercompass/internal/store"
	"github.com/ashureev/careercompass/web"
)

const (
	submitEndpoint = "/api/assessment/messages"
	streamEndpoint = "/ws/assessment"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

	// Catalog storage.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected", "path", cfg.DBPath)

	if err := repo.SeedCatalog(context.Background(), catalog.SeedCareers(), catalog.SeedRoadmap()); err != nil {
		slog.Error("Failed to seed catalog", "error", err)
		os.Exit(1)
	}

	cat, err := catalog.Load(context.Background(), repo)
	if err != nil {
		slog.Error("Failed to load catalog", "error", err)
		os.Exit(1)
	}
	slog.Info("Catalog loaded", "careers", len(cat.Careers()), "roadmap_phases", len(cat.Roadmap("").Phases))

	// Initialize services.
	hub := realtime.NewHub()
	mgr := assessment.NewManager(assessment.ManagerConfig{
		ThinkDelay:    cfg.Assessment.ThinkDelay,
		RedirectDelay: cfg.Assessment.RedirectDelay,
	}, hub)
	sh := shell.New(cat, shell.AssessmentInfo{
		Opening:        assessment.OpeningMessage,
		Questions:      len(assessment.QuestionBank()),
		SubmitEndpoint: submitEndpoint,
		StreamEndpoint: streamEndpoint,
	})

	// Initialize handlers.
	apiHandler := api.NewHandler(cfg, mgr, sh, cat, repo)
	defer apiHandler.Close()
	wsHandler := realtime.NewWebSocketHandler(mgr, hub, cfg.FrontendURL, cfg.IsDevelopment())

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics)
	}
	r.Use(middleware.CORS(cfg.AllowedOrigins()))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Identity is only needed where assessment runs are keyed.
	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(cfg.IsDevelopment()))
		r.Route("/api", apiHandler.RegisterRoutes)
		r.Get(streamEndpoint, wsHandler.ServeHTTP)
	})

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// WebSocket connections are long-lived, so no WriteTimeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	assessment.StartTTLWorker(ctx, mgr, cfg.Assessment.SweepInterval, cfg.Assessment.SessionTTL)

	var grpcHealth *health.Server
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			slog.Error("Failed to listen for gRPC", "port", cfg.GRPCPort, "error", err)
			os.Exit(1)
		}
		grpcHealth = health.NewServer(repo)
		grpcHealth.Watch(ctx, 15*time.Second)
		go func() {
			if err := grpcHealth.Serve(lis); err != nil {
				slog.Error("gRPC health server failed", "error", err)
			}
		}()
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	if grpcHealth != nil {
		grpcHealth.Shutdown()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Cancel pending replies and redirects before dropping connections.
	mgr.CloseAll()
	hub.CloseAll()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
