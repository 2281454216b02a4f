package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	sghttp "github.com/swarmgate/swarmgate/internal/adapter/http"
	"github.com/swarmgate/swarmgate/internal/adapter/jsonfile"
	"github.com/swarmgate/swarmgate/internal/adapter/memory"
	sgnats "github.com/swarmgate/swarmgate/internal/adapter/nats"
	sgotel "github.com/swarmgate/swarmgate/internal/adapter/otel"
	"github.com/swarmgate/swarmgate/internal/adapter/postgres"
	"github.com/swarmgate/swarmgate/internal/adapter/ristretto"
	"github.com/swarmgate/swarmgate/internal/config"
	"github.com/swarmgate/swarmgate/internal/logger"
	"github.com/swarmgate/swarmgate/internal/port/notifier"
	"github.com/swarmgate/swarmgate/internal/port/statestore"
	"github.com/swarmgate/swarmgate/internal/service"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"storage_backend", cfg.Storage.Backend,
	)

	ctx := context.Background()

	// --- State storage ---
	var store statestore.Store
	switch cfg.Storage.Backend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		slog.Info("postgres connected")
		store = postgres.NewStore(pool)
	case "memory":
		store = memory.NewStore()
	default:
		s, err := jsonfile.NewStore(cfg.Storage.Dir)
		if err != nil {
			return fmt.Errorf("jsonfile store: %w", err)
		}
		store = s
	}

	// --- Optional lifecycle event broadcast ---
	var notify notifier.Notifier
	if cfg.NATS.Enabled {
		n, err := sgnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = n.Close() }()
		notify = n
	}

	// --- Analytics read cache ---
	analyticsCache, err := ristretto.New(cfg.Analytics.CacheSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer analyticsCache.Close()

	// --- Metrics ---
	metrics, err := sgotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Services ---
	learner, err := service.NewLearnerService(ctx, store, analyticsCache, notify, metrics, cfg.Learner)
	if err != nil {
		return fmt.Errorf("learner: %w", err)
	}
	coordinator := service.NewCoordinatorService(
		service.NewAdmissionService(cfg.Admission),
		service.NewStrategyService(cfg.Strategy),
		service.NewPlannerService(cfg.Planner, cfg.Strategy),
		learner,
		service.NewInsightService(learner, store, cfg.Insights),
		service.NewAnalyticsService(learner, analyticsCache, cfg.Analytics),
		metrics,
	)

	// --- HTTP ---
	r := chi.NewRouter()
	r.Use(sghttp.CORS(cfg.Server.CORSOrigin))
	r.Use(sghttp.Logger)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(sgotel.HTTPMiddleware(cfg.Logging.Service))

	sghttp.MountRoutes(r, sghttp.NewHandlers(coordinator, version))

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	<-done
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
