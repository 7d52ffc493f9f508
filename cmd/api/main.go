package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/josh-kwaku/kyc-verify/internal/broadcast"
	"github.com/josh-kwaku/kyc-verify/internal/config"
	"github.com/josh-kwaku/kyc-verify/internal/eventstore"
	"github.com/josh-kwaku/kyc-verify/internal/handler"
	"github.com/josh-kwaku/kyc-verify/internal/logging"
	"github.com/josh-kwaku/kyc-verify/internal/middleware"
	"github.com/josh-kwaku/kyc-verify/internal/normalizer"
	"github.com/josh-kwaku/kyc-verify/internal/service"
	"github.com/josh-kwaku/kyc-verify/internal/telemetry"
)

const serviceName = "kyc-verify"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//go:embed openapi.yaml
var openAPISpec []byte

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init(serviceName, cfg.LogLevel, cfg.AppEnv)

	shutdownTracing, err := telemetry.Setup(context.Background(), telemetry.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  serviceName,
		Version:      version,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	if cfg.WebhookSecret == "" {
		slog.Warn("VERIFF_WEBHOOK_SECRET is not set, webhook signatures will not be verified")
	}
	if cfg.VeriffAPIKey == "" {
		slog.Warn("VERIFF_API_KEY is not set, session creation will fail")
	}

	store := eventstore.New(cfg.EventStoreCapacity)
	broadcaster := broadcast.New(cfg.BroadcastBuffer, logger)

	checks := map[string]handler.Checker{}
	limiter, closeLimiter, err := newLimiter(cfg, checks)
	if err != nil {
		slog.Error("failed to set up rate limiter", "error", err)
		os.Exit(1)
	}

	router, err := newRouter(routerDeps{
		version:            version,
		store:              store,
		normalizer:         normalizer.New(normalizer.WithLogger(logger)),
		broadcaster:        broadcaster,
		sessions:           service.NewVeriffClient(cfg.VeriffBaseURL, cfg.VeriffAPIKey, cfg.VeriffTimeout),
		limiter:            limiter,
		checks:             checks,
		webhookSecret:      cfg.WebhookSecret,
		inspectorJWTSecret: cfg.InspectorJWTSecret,
		callbackURL:        cfg.VeriffCallbackURL,
		maxBodyBytes:       cfg.WebhookMaxBodyBytes,
	})
	if err != nil {
		slog.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	var h http.Handler = router
	if cfg.OTelEnabled {
		h = otelhttp.NewHandler(router, serviceName)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr, "event_store_capacity", store.Capacity())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// closing the broadcaster ends open inspector streams so Shutdown can drain
	if err := broadcaster.Close(); err != nil {
		slog.Warn("failed to close broadcaster", "error", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if err := closeLimiter(); err != nil {
		slog.Warn("failed to close rate limiter", "error", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		slog.Warn("failed to flush traces", "error", err)
	}
	slog.Info("server stopped", "events_discarded", store.Len())
}

// newLimiter picks the Redis limiter when REDIS_URL is set and registers its
// readiness check; otherwise limits are kept per process.
func newLimiter(cfg *config.Config, checks map[string]handler.Checker) (middleware.Limiter, func() error, error) {
	if cfg.RedisURL == "" {
		return middleware.NewMemoryLimiter(cfg.SessionRateLimit, cfg.SessionRateWindow), func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("newLimiter: parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	checks["redis"] = func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}

	slog.Info("session rate limiting backed by redis", "addr", opts.Addr)
	return middleware.NewRedisLimiter(rdb, cfg.SessionRateLimit, cfg.SessionRateWindow, "kyc:rl:session"), rdb.Close, nil
}
