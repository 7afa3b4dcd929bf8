// Package main is the entrypoint for the VoiceDesk API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiranshivaraju/voicedesk/internal/api"
	"github.com/kiranshivaraju/voicedesk/internal/api/handler"
	mw "github.com/kiranshivaraju/voicedesk/internal/api/middleware"
	"github.com/kiranshivaraju/voicedesk/internal/archive"
	"github.com/kiranshivaraju/voicedesk/internal/audit"
	"github.com/kiranshivaraju/voicedesk/internal/cache"
	"github.com/kiranshivaraju/voicedesk/internal/config"
	"github.com/kiranshivaraju/voicedesk/internal/intake"
	"github.com/kiranshivaraju/voicedesk/internal/observability/metrics"
	"github.com/kiranshivaraju/voicedesk/internal/store"
	"github.com/kiranshivaraju/voicedesk/internal/transcribe"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config; fail fast on invalid config
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))
	slog.Info("config loaded", "stt_provider", cfg.STT.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create transcription provider
	transcriber, err := transcribe.NewProvider(cfg.STT)
	if err != nil {
		return fmt.Errorf("create STT provider: %w", err)
	}
	slog.Info("STT provider initialized", "provider", transcriber.Name())

	// 6. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	intakeMetrics := metrics.NewIntakeMetrics(reg)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	// 7. Create store and intake service
	pgStore := store.NewPostgresStore(pool)
	opts := []intake.Option{
		intake.WithCache(redisCache),
		intake.WithMetrics(intakeMetrics),
	}
	if cfg.Archive.Enabled() {
		s3Client, err := archive.NewS3Client(ctx, cfg.Archive)
		if err != nil {
			return fmt.Errorf("create s3 client: %w", err)
		}
		opts = append(opts, intake.WithArchive(archive.NewStore(s3Client, cfg.Archive.Bucket)))
		slog.Info("audio archive enabled", "bucket", cfg.Archive.Bucket)
	}
	svc := intake.NewService(pgStore, audit.NewLog(pgStore, nil), transcriber, opts...)

	// 8. Build router with dependencies
	deps := api.Dependencies{
		RateLimit:          mw.NewRateLimit(redisCache, cfg.Redis.RateLimitPerMinute),
		HTTPMetrics:        httpMetrics,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,

		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		HealthHandler:    handler.NewHealthHandler(pgStore, redisCache),
		StartHandler:     handler.NewStartHandler(svc),
		STTHandler:       handler.NewSTTHandler(svc, cfg.Server.MaxAudioBytes),
		AnalyzeHandler:   handler.NewAnalyzeHandler(svc),
		ConfirmHandler:   handler.NewConfirmHandler(svc),
		FinalizeHandler:  handler.NewFinalizeHandler(svc),
		ComplaintHandler: handler.NewGetComplaintHandler(svc),
		ListLogsHandler:  handler.NewListLogsHandler(svc),
	}

	router := api.NewRouter(deps)

	// 9. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second + cfg.STT.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
