package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/Triage/internal/api"
	"github.com/MikeSquared-Agency/Triage/internal/broker"
	"github.com/MikeSquared-Agency/Triage/internal/cache"
	"github.com/MikeSquared-Agency/Triage/internal/config"
	"github.com/MikeSquared-Agency/Triage/internal/hermes"
	"github.com/MikeSquared-Agency/Triage/internal/roster"
	"github.com/MikeSquared-Agency/Triage/internal/store"
	"github.com/MikeSquared-Agency/Triage/internal/textnorm"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	interactive := flag.Bool("interactive", false, "read tickets from stdin instead of serving HTTP")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// History store
	var db store.Store
	if cfg.Database.URL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		db = pg
		logger.Info("connected to database")
	} else {
		db = store.NewCSVStore(cfg.Data.TicketsPath, cfg.Data.CalibrationPath, logger)
		logger.Info("using csv history", "tickets", cfg.Data.TicketsPath, "calibration", cfg.Data.CalibrationPath)
	}
	defer db.Close()

	// Roster
	var rosterProvider roster.Provider
	if cfg.Roster.File != "" {
		rosterProvider = roster.NewFileProvider(cfg.Roster.File)
	} else {
		rosterProvider = roster.NewHTTPClient(cfg.Roster.URL, cfg.Roster.Token, cfg.RosterTimeout())
	}

	// Artifact cache
	artifactCache, closeCache, err := newCache(ctx, cfg.Cache, logger)
	if err != nil {
		logger.Error("failed to open artifact cache", "error", err)
		os.Exit(1)
	}
	defer closeCache()

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	norm := textnorm.New(textnorm.NewIndonesianStemmer(cfg.Text.ExtraRoots...), cfg.Text.ExtraStopwords...)
	b := broker.New(db, rosterProvider, artifactCache, hermesClient, norm, cfg, logger)
	if err := b.Init(ctx); err != nil {
		logger.Error("failed to build artifacts", "error", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(ctx, b, os.Stdin, os.Stdout); err != nil {
			logger.Error("interactive session failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := b.SetupSubscriptions(ctx); err != nil {
		logger.Warn("failed to subscribe to ticket requests", "error", err)
	}

	// API server
	router := api.NewRouter(b, cfg.Server.AdminToken, cfg.Server.RateLimit, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(),
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func newCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (cache.Cache, func(), error) {
	switch cfg.Backend {
	case config.CacheRedis:
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.KeyPrefix)
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("redis cache unreachable, artifacts will be rebuilt", "addr", cfg.RedisAddr, "error", err)
		}
		return rc, func() { _ = rc.Close() }, nil
	case config.CacheNone:
		return cache.Noop{}, func() {}, nil
	default:
		fc, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return fc, func() {}, nil
	}
}
