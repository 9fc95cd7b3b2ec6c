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

	"github.com/attaboy/matchday/internal/app"
	"github.com/attaboy/matchday/internal/auth"
	"github.com/attaboy/matchday/internal/feed"
	"github.com/attaboy/matchday/internal/guard"
	"github.com/attaboy/matchday/internal/infra"
	"github.com/attaboy/matchday/internal/projection"
	"github.com/attaboy/matchday/internal/provider"
	"github.com/attaboy/matchday/internal/repository"
	"github.com/attaboy/matchday/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Game store
	var store repository.GameStore
	switch cfg.Store {
	case infra.StoreMemory:
		store = repository.NewMemoryStore()
		logger.Warn("using in-memory game store; state is lost on restart")
	default:
		if cfg.RunMigrations {
			if err := infra.RunMigrations(cfg.DSN(), "", logger); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		pool, err := infra.NewPostgresPool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		logger.Info("connected to postgres")
		store = repository.NewPgStore(pool)
	}

	// Standings projections
	var projections projection.Store
	var projectionPinger infra.Pinger
	switch cfg.ProjectionStore {
	case infra.StoreMemory:
		projections = projection.NewInMemoryStore()
	default:
		client, err := projection.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		logger.Info("connected to redis")
		rs := projection.NewRedisStore(client)
		projections, projectionPinger = rs, rs
	}

	// Match feed
	var source provider.MatchSource
	switch cfg.MatchProvider {
	case infra.ProviderFixture:
		source = provider.NewFixtureSource(cfg.FixturePath)
	default:
		source = provider.NewFootballDataClient(cfg.FootballDataBaseURL, cfg.FootballDataAPIKey, logger)
	}
	logger.Info("match provider configured", "provider", source.Name())

	// Auth
	playerExpiry, adminExpiry, err := cfg.JWTExpiries()
	if err != nil {
		return err
	}
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, playerExpiry, adminExpiry)

	// Services
	hub := infra.NewWSHub(logger)
	games := service.NewGameService(store, projections, hub, source, logger)
	poller := feed.NewPoller(games,
		source,
		guard.NewCircuitBreaker(cfg.FeedFailureThreshold, cfg.FeedResetTimeout),
		cfg.MatchPollInterval,
		logger,
	)

	r := app.NewRouter(app.RouterDeps{
		Games:         games,
		Hub:           hub,
		JWTMgr:        jwtMgr,
		Logger:        logger,
		AdminAPIKey:   cfg.AdminAPIKey,
		CORSOrigins:   cfg.CORSAllowedOrigins,
		BetLimiter:    guard.NewRateLimiter(cfg.BetRateLimit, cfg.BetRateWindow),
		SignInLimiter: guard.NewRateLimiter(20, time.Minute),
		Store:         store,
		Projections:   projectionPinger,
		Feed:          poller,
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		poller.Run(ctx)
	}()

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		stop()
		<-pollerDone
		return fmt.Errorf("server error: %w", err)
	}

	// Shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Shutdown(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	<-pollerDone

	logger.Info("server stopped gracefully")
	return nil
}
