package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/lorrc/service-desk-dashboard/internal/adapters/primary/http"
	mw "github.com/lorrc/service-desk-dashboard/internal/adapters/primary/http/middleware"
	"github.com/lorrc/service-desk-dashboard/internal/adapters/primary/websocket"
	"github.com/lorrc/service-desk-dashboard/internal/adapters/secondary/panels"
	"github.com/lorrc/service-desk-dashboard/internal/auth"
	"github.com/lorrc/service-desk-dashboard/internal/bootstrap"
	"github.com/lorrc/service-desk-dashboard/internal/config"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	"github.com/lorrc/service-desk-dashboard/internal/core/services"
	"github.com/lorrc/service-desk-dashboard/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("server shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// 3. Initialize Database Pool (optional)
	var pool *pgxpool.Pool
	if cfg.Database.URL != "" {
		p, err := bootstrap.OpenDatabase(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer p.Close()
		pool = p
	}

	operators, err := bootstrap.Operators(ctx, cfg, pool)
	if err != nil {
		return err
	}

	// 4. Initialize Security & Real-time Components
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	hub := websocket.NewHub(logger)

	// 5. Initialize Rate Limiters
	var generalRateLimiter, authRateLimiter, interactionRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		generalRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})
		defer generalRateLimiter.Stop()

		authRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.AuthRPS,
			BurstSize:         cfg.RateLimit.AuthBurst,
			CleanupInterval:   time.Minute,
			TTL:               5 * time.Minute,
		})
		defer authRateLimiter.Stop()

		interactionRateLimiter = mw.NewKeyedRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.InteractionRPS,
			BurstSize:         cfg.RateLimit.InteractionBurst,
			CleanupInterval:   time.Minute,
			TTL:               10 * time.Minute,
		}, mw.OperatorKey)
		defer interactionRateLimiter.Stop()
	}

	// 6. Dependency Injection (Wiring the Hexagon)
	panelsConfig := bootstrap.Panels(cfg.Dashboard)
	dispatcher := services.NewDispatcher(logger, panels.NewDashboardRenderers(panelsConfig, hub)...)
	queue := services.NewRecomputeQueue(cfg.Dashboard.IdleDelay, cfg.Dashboard.IdleCeiling, logger)

	dashboardService := services.NewDashboardService(
		bootstrap.RecordSource(cfg, pool),
		dispatcher,
		queue,
		hub,
		bootstrap.Dashboard(cfg),
		logger,
	)
	authService := services.NewAuthService(operators)

	models := func(view *domain.DerivedView) []domain.Event {
		return panels.Events(panelsConfig, view)
	}
	hub.SetResync(func() []domain.Event {
		view, err := dashboardService.Snapshot(ctx)
		if err != nil {
			return nil
		}
		return models(view)
	})

	// Handlers (Primary Adapters)
	errorHandler := httpAdapter.NewErrorHandler(logger)

	var dbCheck httpAdapter.HealthChecker
	if pool != nil {
		dbCheck = pool
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		Logger:             logger,
		TokenManager:       tokenManager,
		Auth:               httpAdapter.NewAuthHandler(authService, tokenManager, errorHandler, logger),
		Dashboard:          httpAdapter.NewDashboardHandler(dashboardService, models, errorHandler, logger),
		Health:             httpAdapter.NewHealthHandler(dashboardService, dbCheck, cfg.App.Version),
		WebSocket:          httpAdapter.NewWebSocketHandler(hub, tokenManager, dashboardService, models, cfg, logger),
		GeneralLimiter:     generalRateLimiter,
		AuthLimiter:        authRateLimiter,
		InteractionLimiter: interactionRateLimiter,
		AllowedOrigins:     cfg.WebSocket.AllowedOrigins,
	})

	// 7. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		// A failed load is terminal for the session but not for the
		// process: clients are told and health reports it.
		if err := dashboardService.Load(gctx); err != nil {
			logger.ErrorContext(gctx, "dashboard unavailable", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		dashboardService.Shutdown()
		return err
	})

	return g.Wait()
}
