package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/quizroom/quizroom-go/internal/api"
	"github.com/quizroom/quizroom-go/internal/broadcast"
	"github.com/quizroom/quizroom-go/internal/factory"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Logger:        logger,
		BroadcastType: os.Getenv("QUIZROOM_BROADCAST_TYPE"),
	}

	// Configure Redis if the broadcast transport is redis
	if cfg.BroadcastType == factory.BroadcastTypeRedis {
		redisURL := os.Getenv("QUIZROOM_REDIS_URL")
		if redisURL == "" {
			logger.Error("QUIZROOM_REDIS_URL required when QUIZROOM_BROADCAST_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := broadcast.DefaultRedisConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		RoomController: app.RoomController,
		Gateway:        app.Gateway,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("QUIZROOM_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid QUIZROOM_PORT", slog.String("value", port))
			os.Exit(1)
		}
		serverConfig.Port = p
	}
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

	logger.Info("server started", slog.String("addr", server.Addr()))

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
