package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"verification-service/internal/auth"
	"verification-service/internal/config"
	"verification-service/internal/db"
	httphandler "verification-service/internal/http"
	"verification-service/internal/http/middleware"
	"verification-service/internal/logger"
	"verification-service/internal/repository"
	"verification-service/internal/service"
	"verification-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	ownerRepo := repository.NewOwnerRepository(database)
	attemptRepo := repository.NewAttemptRepository(database)

	registryService := service.NewRegistryService(ownerRepo, appLogger)
	verificationService := service.NewVerificationService(ownerRepo, attemptRepo, appLogger)
	exportService := service.NewExportService(ownerRepo, attemptRepo, appLogger)

	// Initialize snapshot archive (optional, won't fail if not configured)
	snapshots, err := storage.NewSnapshotArchiveFromEnv()
	if err != nil && !errors.Is(err, storage.ErrNotConfigured) {
		appLogger.Fatal().Err(err).Msg("failed to initialize snapshot archive")
	}
	if err != nil {
		appLogger.Warn().Msg("R2 storage not configured, snapshot archiving will be disabled")
	}

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(registryService, verificationService, exportService, cfg, appLogger, snapshots)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, database)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting verification service")

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error().Err(err).Msg("failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server exited")
}
