// Package main provides the API server entry point for the tipbase service.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tipbase-server/internal/api"
	"github.com/tipbase-server/internal/config"
	"github.com/tipbase-server/internal/event"
	"github.com/tipbase-server/internal/logging"
	"github.com/tipbase-server/internal/service"
	"github.com/tipbase-server/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Init(logging.ParseLevel(cfg.Logging.Level), logging.ParseFormat(cfg.Logging.Format))
	logger := logging.Global()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Connect to the key-value store
	kv, err := storage.NewRedisKV(&cfg.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer kv.Close()

	// Event bus with cross-process relay over Redis pub/sub
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := event.NewBus(kv.Client(), logger)
	go bus.Run(ctx)

	// The user directory is optional; without Postgres the server runs
	// key-value only.
	var directory *storage.DirectoryRepository
	if cfg.DirectoryEnabled() {
		postgres, err := storage.NewPostgresDB(&cfg.Postgres)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Postgres")
		}
		defer postgres.Close()
		directory = storage.NewDirectoryRepository(postgres)
		logger.Info("User directory enabled")
	} else {
		logger.Info("User directory disabled: no Postgres host configured")
	}

	// Initialize services
	authService := service.NewAuthService(kv, bus, cfg.Auth, logger)
	notificationService := service.NewNotificationService(kv, bus, cfg.Feed, logger)
	tipsService := service.NewTipsService(kv, bus, cfg.Tips, logger)

	// Background sweep announcing settled tips on the feed
	monitor := service.NewResultsMonitor(tipsService, notificationService, kv, cfg.Monitor, logger)
	if cfg.Monitor.Enabled {
		if err := monitor.Start(ctx); err != nil {
			logger.WithError(err).Fatal("Failed to start results monitor")
		}
		defer monitor.Stop()
	}

	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		TipCost:         cfg.Tips.Cost,
		RateLimitRPS:    cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst:  cfg.RateLimit.Burst,
	}

	server := api.NewServer(serverConfig, authService, notificationService, tipsService, directory)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
