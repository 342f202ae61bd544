package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cottonscout/cotton-scraper/internal/api"
	"github.com/cottonscout/cotton-scraper/internal/config"
	"github.com/cottonscout/cotton-scraper/internal/events"
	"github.com/cottonscout/cotton-scraper/internal/fetch"
	"github.com/cottonscout/cotton-scraper/internal/jobs"
	"github.com/cottonscout/cotton-scraper/internal/material"
	"github.com/cottonscout/cotton-scraper/internal/metrics"
	"github.com/cottonscout/cotton-scraper/internal/registry"
	"github.com/cottonscout/cotton-scraper/internal/scrape"
	"github.com/cottonscout/cotton-scraper/internal/status"
	"github.com/cottonscout/cotton-scraper/internal/storage"
	"github.com/cottonscout/cotton-scraper/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher, cleanupFetcher, err := newFetcher(cfg.Fetcher, logger)
	if err != nil {
		logger.Error("failed to initialize fetcher", "error", err)
		os.Exit(1)
	}
	defer cleanupFetcher()

	snapStorage, cleanupStorage, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer cleanupStorage()

	var publisher *events.Publisher
	if cfg.Events.RedisURL != "" {
		publisher, err = events.NewPublisher(ctx, cfg.Events.RedisURL, logger)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
	}

	promRegistry := prometheus.NewRegistry()
	m := metrics.New(promRegistry)

	reg := registry.Default()
	reporter := status.NewReporter()
	productStore := store.New()

	coordinator := &jobs.Coordinator{
		Registry:       reg,
		Factory:        scrape.NewFactory(fetcher, logger),
		Detector:       material.NewDetector(),
		Store:          productStore,
		Reporter:       reporter,
		Publisher:      publisher,
		Metrics:        m,
		Logger:         logger.With("component", "coordinator"),
		MaxPages:       cfg.Scraper.MaxPages,
		DetailAttempts: cfg.Scraper.DetailAttempts,
		RetryDelay:     cfg.Scraper.RetryDelay,
		MaxProducts:    cfg.Scraper.MaxProducts,
	}

	controller := jobs.NewController(jobs.ControllerDeps{
		Registry:    reg,
		Coordinator: coordinator,
		Store:       productStore,
		Storage:     snapStorage,
		Reporter:    reporter,
		Publisher:   publisher,
		Metrics:     m,
		Logger:      logger.With("component", "controller"),
	})

	server := api.NewServer(controller, reg, productStore, snapStorage, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"state":  controller.Status().State,
		})
	})
	r.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	r.Mount("/", server.Routes())

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down")
		if err := controller.Stop(); err != nil {
			logger.Error("stop failed", "error", err)
		}
		controller.Wait()
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server starting", "addr", httpServer.Addr, "fetcher", cfg.Fetcher.Mode, "storage", cfg.Storage.Backend)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func newFetcher(cfg config.FetcherConfig, logger *slog.Logger) (fetch.Fetcher, func(), error) {
	if cfg.Mode == "browser" {
		opts := fetch.DefaultBrowserOptions()
		opts.Headless = cfg.Headless
		opts.Timeout = cfg.Timeout
		opts.ViewportWidth = cfg.ViewportWidth
		opts.ViewportHeight = cfg.ViewportHeight
		opts.Locale = cfg.Locale

		browser, err := fetch.NewBrowserFetcher(opts, logger)
		if err != nil {
			return nil, nil, err
		}
		return browser, func() {
			if err := browser.Close(); err != nil {
				logger.Error("browser close failed", "error", err)
			}
		}, nil
	}

	return fetch.NewHTTPFetcher(cfg.Timeout, cfg.UserAgents), func() {}, nil
}

func newStorage(ctx context.Context, cfg config.StorageConfig) (storage.Storage, func(), error) {
	if cfg.Backend == "postgres" {
		ps, err := storage.NewPostgresStorage(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return ps, ps.Close, nil
	}

	fs, err := storage.NewFileStorage(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	return fs, func() {}, nil
}
