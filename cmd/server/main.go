// Package main is the entry point for the smartbiz API server.
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

	"smartbiz/internal/app"
	"smartbiz/internal/config"
	"smartbiz/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting smartbiz server", "storage", cfg.Storage.Driver, "env", cfg.App.Env)

	backend, err := app.NewBackend(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer backend.Close()

	if backend.DB != nil {
		if err := backend.DB.Ping(ctx); err != nil {
			log.Fatalw("failed to ping database", "error", err)
		}
		log.Info("database connection established")
	}

	// Memory keys live in this process, so nobody else can expire them.
	if cfg.Storage.Driver == config.StorageMemory && cfg.Idempotency.Enabled {
		hkCtx, stop := context.WithCancel(ctx)
		defer stop()
		go app.NewHousekeeper(backend, time.Hour, log).Run(hkCtx)
	}

	services := app.NewServices(cfg, backend)
	router := app.NewRouter(cfg, backend, services, log)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
