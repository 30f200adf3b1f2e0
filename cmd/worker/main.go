// Package main is the entry point for the smartbiz background worker.
// It expires idempotency keys stored in PostgreSQL; the API server does the
// same in process when storage is in memory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
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

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	if cfg.Storage.Driver != config.StoragePostgres {
		log.Infow("nothing to do for this storage driver", "storage", cfg.Storage.Driver)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting smartbiz worker")

	backend, err := app.NewBackend(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer backend.Close()

	housekeeper := app.NewHousekeeper(backend, 1*time.Hour, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		housekeeper.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}
