package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"archivesync/internal/app"
	"archivesync/internal/archive"
	"archivesync/internal/config"
	"archivesync/internal/constants"
	httpapp "archivesync/internal/http"
	"archivesync/internal/logger"
	"archivesync/internal/metrics"
	"archivesync/internal/progress"
	"archivesync/internal/reconcile"
	"archivesync/internal/store"
	"archivesync/internal/worker"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize Archive.org client with read-through cache
	client := archive.NewClient(cfg.ArchiveURL)
	source := archive.NewCachedClient(client, db, constants.DefaultCacheTTL)

	// Initialize Services
	reconciler := reconcile.NewReconciler(db, appLogger, cfg.SimilarityThreshold)
	tracker := progress.NewTracker(db, appLogger)
	aggregator := metrics.NewAggregator(db, appLogger)
	importService := app.NewImportService(source, reconciler, db, tracker, appLogger)

	// Initialize Worker
	w := worker.NewWorker(importService, aggregator, cfg.Concurrency, cfg.AggregateHour, appLogger)
	w.Start()
	defer w.Stop()

	// Initialize Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Routes
	h := httpapp.NewHandler(db, tracker, aggregator, w, appLogger)
	h.RegisterRoutes(r)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		appLogger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exiting")
}
