package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"inkrelay-backend/internal/infrastructure/realtime"
	"inkrelay-backend/internal/infrastructure/storage"
	"inkrelay-backend/internal/ingest"
	"inkrelay-backend/internal/interfaces/http/rest"
	"inkrelay-backend/internal/observability"
	"inkrelay-backend/internal/svg"
	"inkrelay-backend/pkg/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	metrics := observability.NewCollector("inkrelay")

	var (
		store         storage.ObjectStore
		objectHandler http.Handler
	)
	if cfg.UseSupabaseStorage() {
		supabaseStore, err := storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.StorageBucket, logger)
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
		store = storage.WithBreaker(supabaseStore, "supabase-storage", logger)
		logger.Info("Using Supabase storage", zap.String("bucket", cfg.StorageBucket))
	} else {
		memStore := storage.NewMemoryStore(cfg.LocalStorageBaseURL)
		store = memStore
		objectHandler = memStore.Handler()
		logger.Warn("Supabase not configured, using in-memory storage")
	}

	renderOptions := svg.DefaultOptions
	if cfg.TuningFile != "" {
		watcher, err := config.NewTuningWatcher(cfg.TuningFile, logger)
		if err != nil {
			logger.Fatal("Failed to start tuning watcher", zap.Error(err))
		}
		defer watcher.Stop()

		renderOptions = func() svg.Options {
			tuning := watcher.Current()
			opts := svg.DefaultOptions()
			opts.Padding = tuning.Render.Padding
			opts.PressureMultiplier = tuning.Render.PressureMultiplier
			opts.Precision = tuning.Render.Precision
			return opts
		}
	}

	hub := realtime.NewHub(logger)
	service := ingest.NewService(store, hub, metrics, logger, renderOptions)

	router := rest.NewRouter(rest.RouterConfig{
		Handwriting:   rest.NewHandwritingHandler(service, logger),
		Subscribe:     rest.NewSubscribeHandler(hub, logger),
		Metrics:       metrics,
		Logger:        logger,
		ServiceToken:  cfg.ServiceToken,
		EnableCORS:    cfg.EnableCORS,
		ObjectHandler: objectHandler,
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // websocket subscribers hold their connection open
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
