package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/josh-kwaku/kyc-verify/internal/domain"
	"github.com/josh-kwaku/kyc-verify/internal/logging"
)

const (
	authClientHeader    = "X-AUTH-CLIENT"
	maxErrorBodyBytes   = 4 << 10
	maxSessionRespBytes = 1 << 20
)

// VeriffClient creates verification sessions against the provider's station
// API.
type VeriffClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewVeriffClient(baseURL, apiKey string, timeout time.Duration) *VeriffClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &VeriffClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type sessionPayload struct {
	Verification verificationPayload `json:"verification"`
}

type verificationPayload struct {
	Person     personPayload   `json:"person"`
	Document   documentPayload `json:"document"`
	Lang       string          `json:"lang"`
	VendorData string          `json:"vendorData,omitempty"`
	Callback   string          `json:"callback,omitempty"`
}

type personPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type documentPayload struct {
	Type    string `json:"type"`
	Country string `json:"country"`
}

type sessionResult struct {
	Status       string `json:"status"`
	URL          string `json:"url"`
	Verification *struct {
		ID     string `json:"id"`
		URL    string `json:"url"`
		Status string `json:"status"`
	} `json:"verification"`
}

func (c *VeriffClient) CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.Session, error) {
	if c.apiKey == "" {
		return nil, domain.ErrProviderNotConfigured
	}
	log := logging.FromContext(ctx)

	payload := sessionPayload{
		Verification: verificationPayload{
			Person:     personPayload{FirstName: req.FirstName, LastName: req.LastName},
			Document:   documentPayload{Type: req.DocumentType, Country: req.Country},
			Lang:       req.Lang,
			VendorData: req.VendorData,
			Callback:   req.CallbackURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("CreateSession: marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("CreateSession: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(authClientHeader, c.apiKey)

	start := time.Now()
	log.Info("provider request sent", "provider", "veriff", "callback_registered", req.CallbackURL != "")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("CreateSession: send: %w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	log.Info("provider response received",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("CreateSession: %w", &domain.ProviderError{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		})
	}

	var result sessionResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxSessionRespBytes)).Decode(&result); err != nil {
		return nil, fmt.Errorf("CreateSession: decode: %w: %w", domain.ErrProviderUnavailable, err)
	}

	sess := &domain.Session{URL: result.URL}
	if v := result.Verification; v != nil {
		if v.URL != "" {
			sess.URL = v.URL
		}
		sess.ID = v.ID
		sess.Status = v.Status
	}
	if sess.URL == "" {
		return nil, fmt.Errorf("CreateSession: %w", domain.ErrNoSessionURL)
	}
	return sess, nil
}
