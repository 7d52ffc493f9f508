package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/josh-kwaku/kyc-verify/internal/broadcast"
	"github.com/josh-kwaku/kyc-verify/internal/domain"
	"github.com/josh-kwaku/kyc-verify/internal/eventstore"
	"github.com/josh-kwaku/kyc-verify/internal/handler"
	"github.com/josh-kwaku/kyc-verify/internal/middleware"
	"github.com/josh-kwaku/kyc-verify/internal/normalizer"
)

type sessionCreator interface {
	CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.Session, error)
}

type routerDeps struct {
	version            string
	store              *eventstore.Store
	normalizer         *normalizer.Normalizer
	broadcaster        *broadcast.Broadcaster
	sessions           sessionCreator
	limiter            middleware.Limiter
	checks             map[string]handler.Checker
	webhookSecret      string
	inspectorJWTSecret string
	callbackURL        string
	maxBodyBytes       int64
}

func newRouter(d routerDeps) (http.Handler, error) {
	pages, err := handler.NewPageHandler()
	if err != nil {
		return nil, fmt.Errorf("newRouter: %w", err)
	}

	webhookHandler := handler.NewWebhookHandler(d.normalizer, d.store, d.broadcaster, d.webhookSecret, d.maxBodyBytes)
	inspectorHandler := handler.NewInspectorHandler(d.store, d.broadcaster)
	sessionHandler := handler.NewSessionHandler(d.sessions, d.callbackURL)
	healthHandler := handler.NewHealthHandler(d.version, d.checks)

	requireInspector := middleware.Auth(d.inspectorJWTSecret)
	rateLimit := middleware.RateLimit(d.limiter)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.HandleFunc("GET /docs", handler.ServeDocs("KYC Verify API"))
	mux.HandleFunc("GET "+handler.DocsSpecPath, handler.ServeSpec(openAPISpec))

	mux.HandleFunc("POST "+handler.WebhookPath, webhookHandler.Receive)
	mux.HandleFunc("GET "+handler.WebhookPath, webhookHandler.Probe)

	mux.Handle("GET /api/veriff/webhooks", requireInspector(http.HandlerFunc(inspectorHandler.List)))
	mux.Handle("DELETE /api/veriff/webhooks", requireInspector(http.HandlerFunc(inspectorHandler.Clear)))
	mux.Handle("GET /api/veriff/webhooks/stream", requireInspector(http.HandlerFunc(inspectorHandler.Stream)))
	mux.Handle("GET /api/veriff/webhooks/{id}", requireInspector(http.HandlerFunc(inspectorHandler.Get)))

	mux.Handle("POST /api/veriff/session", rateLimit(http.HandlerFunc(sessionHandler.Create)))

	mux.HandleFunc("GET /", pages.Home)
	mux.HandleFunc("GET /verify", pages.Verify)
	mux.HandleFunc("GET /success", pages.Success)
	mux.HandleFunc("GET /failed", pages.Failed)
	mux.HandleFunc("GET /webhooks-test", pages.Dashboard)

	return middleware.Chain(mux,
		middleware.Recovery,
		middleware.RequestID,
		middleware.Logging,
	), nil
}
