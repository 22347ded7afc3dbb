package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/time/rate"

	"github.com/mcoot/matchboard/internal/api"
	"github.com/mcoot/matchboard/internal/api/middleware"
	"github.com/mcoot/matchboard/internal/config"
	"github.com/mcoot/matchboard/internal/factory"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: settings.LogLevel,
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(factory.ConfigFromSettings(settings, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = app.Close() }()

	limiterCfg := middleware.DefaultRateLimitConfig()
	limiterCfg.Rate = rate.Limit(settings.RateLimitRPS)
	limiterCfg.Burst = settings.RateLimitBurst
	limiter := middleware.NewRateLimiter(limiterCfg, logger)
	defer limiter.Stop()

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		UserService:       app.UserService,
		RankingService:    app.RankingService,
		MatchService:      app.MatchService,
		SimulationService: app.SimulationService,
		Store:             app.Storage,
		Gatherer:          app.Registry,
		RateLimiter:       limiter,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = settings.ServerPort
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", settings.StorageType),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
