package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/josh-kwaku/kyc-verify/internal/domain"
	"github.com/josh-kwaku/kyc-verify/internal/logging"
	"github.com/josh-kwaku/kyc-verify/internal/signature"
)

const processingErrorMessage = "Webhook processing error"

type eventNormalizer interface {
	Normalize(payload any, raw json.RawMessage) domain.WebhookEvent
}

type eventAppender interface {
	Append(event domain.WebhookEvent)
}

type eventPublisher interface {
	Publish(ctx context.Context, event domain.WebhookEvent) error
}

// WebhookHandler receives provider notifications. Apart from a failed
// signature check it always answers 200, whether or not the event was stored.
type WebhookHandler struct {
	normalizer eventNormalizer
	store      eventAppender
	publisher  eventPublisher
	secret     string
	maxBody    int64
}

// NewWebhookHandler wires the receiver. publisher may be nil; an empty secret
// disables signature verification.
func NewWebhookHandler(n eventNormalizer, store eventAppender, publisher eventPublisher, secret string, maxBody int64) *WebhookHandler {
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &WebhookHandler{
		normalizer: n,
		store:      store,
		publisher:  publisher,
		secret:     secret,
		maxBody:    maxBody,
	}
}

type webhookAck struct {
	Received bool   `json:"received"`
	Saved    bool   `json:"saved"`
	ID       string `json:"id,omitempty"`
	Error    string `json:"error,omitempty"`
}

type probeResponse struct {
	Message string `json:"message"`
	Method  string `json:"method"`
}

// Probe answers the provider dashboard's reachability check.
func (h *WebhookHandler) Probe(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, probeResponse{
		Message: "Veriff webhook endpoint is active",
		Method:  http.MethodPost,
	})
}

func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBody+1))
	if err != nil {
		log.Error("failed to read webhook body", "error", err)
		respondNotSaved(w)
		return
	}
	if int64(len(body)) > h.maxBody {
		log.Warn("webhook body exceeds limit, not stored", "limit_bytes", h.maxBody)
		respondNotSaved(w)
		return
	}

	if h.secret != "" && !signature.Verify(body, r.Header.Get(signature.Header), h.secret) {
		log.Warn("webhook signature verification failed")
		RespondAppError(w, ErrInvalidSignature, nil)
		return
	}

	if len(bytes.TrimSpace(body)) == 0 {
		h.Probe(w, r)
		return
	}

	event, err := h.ingest(r.Context(), log, body)
	if err != nil {
		log.Warn("webhook acknowledged without storing", "error", err)
		respondNotSaved(w)
		return
	}

	RespondJSON(w, http.StatusOK, webhookAck{Received: true, Saved: true, ID: event.ID})
}

// ingest parses, normalizes, stores and broadcasts one payload. Panics are
// turned into errors so the caller can still acknowledge.
func (h *WebhookHandler) ingest(ctx context.Context, log *slog.Logger, body []byte) (event domain.WebhookEvent, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("ingest: panic: %v", rec)
		}
	}()

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return event, fmt.Errorf("ingest: parse: %w", err)
	}

	event = h.normalizer.Normalize(payload, body)
	h.store.Append(event)

	log.Info("webhook event stored",
		"webhook_event_id", event.ID,
		"kind", event.Kind,
		"verification_status", deref(event.VerificationStatus),
		"verification_id", deref(event.VerificationID),
	)
	logOutcome(log, event)

	if h.publisher != nil {
		if err := h.publisher.Publish(ctx, event); err != nil {
			log.Warn("failed to broadcast webhook event", "webhook_event_id", event.ID, "error", err)
		}
	}
	return event, nil
}

func logOutcome(log *slog.Logger, event domain.WebhookEvent) {
	var outcome domain.VerificationStatus
	if event.VerificationStatus != nil {
		outcome = event.VerificationStatus.Outcome()
	}
	vid := deref(event.VerificationID)

	switch event.Kind {
	case domain.EventKindSuccess, domain.EventKindStatusChanged:
		switch outcome {
		case domain.VerificationStatusSuccess:
			log.Info("verification successful", "verification_id", vid)
		case domain.VerificationStatusDeclined:
			log.Info("verification declined", "verification_id", vid)
		case domain.VerificationStatusFailed:
			log.Info("verification failed", "verification_id", vid)
		}
	case domain.EventKindFailed, domain.EventKindDeclined:
		log.Info("verification failed", "verification_id", vid, "kind", event.Kind)
	default:
		log.Debug("unhandled webhook event kind", "kind", event.Kind)
	}
}

func respondNotSaved(w http.ResponseWriter) {
	RespondJSON(w, http.StatusOK, webhookAck{Received: true, Saved: false, Error: processingErrorMessage})
}

func deref[T ~string](p *T) string {
	if p == nil {
		return ""
	}
	return string(*p)
}
