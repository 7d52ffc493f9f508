package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/kyc-verify/internal/domain"
	"github.com/josh-kwaku/kyc-verify/internal/signature"
)

const (
	decisionApproved = "approved"
	decisionDeclined = "declined"
)

type mockSession struct {
	ID         string
	Callback   string
	VendorData string
	Status     string
}

// provider imitates the slice of the verification provider this service
// talks to: session creation, the hosted verification page and the decision
// webhook that follows it.
type provider struct {
	publicURL   string
	appURL      string
	callbackURL string
	secret      string
	client      *http.Client
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*mockSession

	deliveries sync.WaitGroup
}

func newProvider(publicURL, appURL, callbackURL, secret string) *provider {
	return &provider{
		publicURL:   strings.TrimRight(publicURL, "/"),
		appURL:      strings.TrimRight(appURL, "/"),
		callbackURL: callbackURL,
		secret:      secret,
		client:      &http.Client{Timeout: 5 * time.Second},
		now:         time.Now,
		sessions:    map[string]*mockSession{},
	}
}

func (p *provider) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", p.handleHealth)
	mux.HandleFunc("POST /v1/sessions", p.handleCreateSession)
	mux.HandleFunc("GET /v/{id}", p.handleHostedPage)
	mux.HandleFunc("POST /v/{id}/decision", p.handleDecision)
	return mux
}

func (p *provider) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createSessionBody struct {
	Verification struct {
		Callback   string `json:"callback"`
		VendorData string `json:"vendorData"`
	} `json:"verification"`
}

func (p *provider) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-AUTH-CLIENT") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"status":  "fail",
			"message": "Mandatory X-AUTH-CLIENT header containing the API key is missing from the request.",
		})
		return
	}

	var body createSessionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"status":  "fail",
			"message": "Request body is not valid JSON",
		})
		return
	}

	sess := &mockSession{
		ID:         uuid.NewString(),
		Callback:   body.Verification.Callback,
		VendorData: body.Verification.VendorData,
		Status:     domain.SessionStatusCreated,
	}
	p.mu.Lock()
	p.sessions[sess.ID] = sess
	p.mu.Unlock()

	slog.Info("mock session created", "session_id", sess.ID, "callback", sess.Callback != "")
	writeJSON(w, http.StatusCreated, map[string]any{
		"status": "success",
		"verification": map[string]string{
			"id":           sess.ID,
			"url":          p.publicURL + "/v/" + sess.ID,
			"status":       sess.Status,
			"sessionToken": uuid.NewString(),
		},
	})
}

var hostedPage = template.Must(template.New("hosted").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Mock verification</title></head>
<body style="font-family: system-ui, sans-serif; max-width: 480px; margin: 48px auto;">
  <h1>Mock verification</h1>
  <p>Session <code>{{.ID}}</code></p>
  <form method="post" action="/v/{{.ID}}/decision">
    <button name="decision" value="approved">Approve</button>
    <button name="decision" value="declined">Decline</button>
  </form>
</body>
</html>`))

func (p *provider) handleHostedPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := p.session(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := hostedPage.Execute(w, sess); err != nil {
		slog.Error("failed to render hosted page", "error", err)
	}
}

func (p *provider) handleDecision(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	decision := r.FormValue("decision")
	if decision != decisionApproved && decision != decisionDeclined {
		http.Error(w, "decision must be approved or declined", http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	sess, ok := p.sessions[id]
	if ok {
		sess.Status = decision
	}
	p.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	callback := sess.Callback
	if callback == "" {
		callback = p.callbackURL
	}
	if callback != "" {
		payload := p.decisionPayload(sess, decision)
		p.deliveries.Add(1)
		go func() {
			defer p.deliveries.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := p.deliver(ctx, callback, payload); err != nil {
				slog.Warn("decision webhook delivery failed", "session_id", id, "error", err)
			}
		}()
	}

	page := "/failed"
	if decision == decisionApproved {
		page = "/success"
	}
	target := p.appURL + page + "?" + url.Values{"sessionId": {id}}.Encode()
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (p *provider) decisionPayload(sess *mockSession, decision string) []byte {
	payload := map[string]any{
		"type": string(domain.EventKindStatusChanged),
		"verification": map[string]any{
			"id":         sess.ID,
			"status":     decision,
			"vendorData": sess.VendorData,
		},
		"timestamp": p.now().UTC().Format(time.RFC3339),
	}
	body, _ := json.Marshal(payload)
	return body
}

func (p *provider) deliver(ctx context.Context, callback string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callback, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("deliver: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.secret != "" {
		req.Header.Set(signature.Header, signature.Sign(body, p.secret))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver: send: %w", err)
	}
	defer resp.Body.Close()

	slog.Info("decision webhook delivered", "callback", callback, "status", resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deliver: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (p *provider) session(id string) (mockSession, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	sess, ok := p.sessions[id]
	if !ok {
		return mockSession{}, false
	}
	return *sess, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
