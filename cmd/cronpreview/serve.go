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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/djlord-it/cronpreview/internal/api"
	"github.com/djlord-it/cronpreview/internal/cache"
	"github.com/djlord-it/cronpreview/internal/circuitbreaker"
	"github.com/djlord-it/cronpreview/internal/config"
	"github.com/djlord-it/cronpreview/internal/cron"
	"github.com/djlord-it/cronpreview/internal/logging"
	"github.com/djlord-it/cronpreview/internal/metrics"
	"github.com/djlord-it/cronpreview/internal/preview"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP preview API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg := config.Load()

	if err := config.Validate(cfg); err != nil {
		return withExitCode(exitInvalidConfig, fmt.Errorf("configuration error: %w", err))
	}

	logger := logging.Setup(cfg.Environment, cfg.LogLevel)
	logConfigWarnings(logger, &cfg)

	svc := preview.New(preview.Config{HorizonYears: cfg.SearchHorizonYears}).WithLogger(logger)
	handler := api.NewHandler(svc).
		WithLogger(logger).
		WithRequestTimeout(cfg.RequestTimeout)

	// Initialize metrics sink (optional)
	var metricsServer *http.Server
	if cfg.MetricsEnabled {
		sink := metrics.NewPrometheusSink(prometheus.DefaultRegisterer, logger)
		svc.WithMetrics(sink)
		handler.WithMetrics(sink)

		// Start metrics HTTP server on separate port
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.MetricsPath, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              ":" + cfg.MetricsPort,
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info().Str("port", cfg.MetricsPort).Str("path", cfg.MetricsPath).Msg("metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	// Wire the preview cache if Redis is configured
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()

		breaker := circuitbreaker.New(cfg.CircuitBreakerThreshold, cfg.CircuitBreakerCooldown)
		previewCache := cache.NewRedisCache(redisClient, breaker, cfg.RedisAddr, cfg.CacheTTL)
		svc.WithCache(previewCache)
		handler.WithHealthChecker(previewCache)

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := previewCache.Ping(pingCtx); err != nil {
			logger.Warn().Err(err).Str("redis", cfg.RedisAddr).Msg("redis unreachable at startup; previews will be computed until it recovers")
		}
		cancel()
		logger.Info().Str("redis", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("preview cache enabled")
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	logger.Info().
		Str("version", version).
		Int("horizon_years", cfg.SearchHorizonYears).
		Msg("cronpreview: started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case received := <-sig:
		logger.Info().Str("signal", received.String()).Msg("shutting down")
	case err := <-serveErr:
		logger.Error().Err(err).Msg("http server error")
		runErr = err
	}

	// Phase 1: Stop HTTP server with graceful shutdown
	httpShutdownCtx, httpShutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer httpShutdownCancel()
	if err := httpServer.Shutdown(httpShutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown error")
	}
	logger.Info().Msg("http server stopped")

	// Phase 2: Stop metrics server if running (with same timeout)
	if metricsServer != nil {
		metricsShutdownCtx, metricsShutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer metricsShutdownCancel()
		if err := metricsServer.Shutdown(metricsShutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown error")
		}
		logger.Info().Msg("metrics server stopped")
	}

	logger.Info().Msg("cronpreview: stopped")
	return runErr
}

// logConfigWarnings reports settings that are valid but likely unintended.
func logConfigWarnings(logger zerolog.Logger, cfg *config.Config) {
	if !cfg.MetricsEnabled {
		logger.Warn().Msg("METRICS_ENABLED=false: preview latency, error kinds and cache hit rate are not observable")
	}

	if cfg.RedisAddr == "" {
		logger.Info().Msg("REDIS_ADDR not set: preview cache disabled, every request is computed")
	}

	if cfg.SearchHorizonYears > cron.DefaultHorizonYears {
		logger.Info().
			Int("search_horizon_years", cfg.SearchHorizonYears).
			Msg("SEARCH_HORIZON_YEARS above default: schedules that never fire take longer to reject")
	}
}
