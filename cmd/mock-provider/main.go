package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/josh-kwaku/kyc-verify/internal/config"
	"github.com/josh-kwaku/kyc-verify/internal/logging"
)

func main() {
	cfg, err := config.LoadMockProvider()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("mock-provider", cfg.LogLevel, cfg.AppEnv)

	p := newProvider(cfg.PublicURL, cfg.AppURL, cfg.CallbackURL, cfg.WebhookSecret)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           p.routes(),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("mock provider started", "addr", addr, "public_url", cfg.PublicURL, "signing", cfg.WebhookSecret != "")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	p.deliveries.Wait()
	slog.Info("mock provider stopped")
}
