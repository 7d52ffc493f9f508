package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/josh-kwaku/kyc-verify/internal/domain"
	"github.com/josh-kwaku/kyc-verify/internal/logging"
)

type eventInspector interface {
	List() []domain.WebhookEvent
	Get(id string) (domain.WebhookEvent, bool)
	Clear() int
}

type eventSubscriber interface {
	Subscribe(ctx context.Context) (<-chan domain.WebhookEvent, error)
}

// InspectorHandler is the operator-facing read and clear surface over the
// event store. Routes are expected to sit behind middleware.Auth.
type InspectorHandler struct {
	store     eventInspector
	events    eventSubscriber
	heartbeat time.Duration
}

func NewInspectorHandler(store eventInspector, events eventSubscriber) *InspectorHandler {
	return &InspectorHandler{store: store, events: events, heartbeat: 15 * time.Second}
}

type listEventsResponse struct {
	Count  int                   `json:"count"`
	Events []domain.WebhookEvent `json:"events"`
}

type eventResponse struct {
	Event domain.WebhookEvent `json:"event"`
}

type clearEventsResponse struct {
	Message string `json:"message"`
	Cleared int    `json:"cleared"`
}

func (h *InspectorHandler) List(w http.ResponseWriter, r *http.Request) {
	events := h.store.List()
	RespondJSON(w, http.StatusOK, listEventsResponse{
		Count:  len(events),
		Events: events,
	})
}

func (h *InspectorHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, ok := h.store.Get(r.PathValue("id"))
	if !ok {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}
	RespondJSON(w, http.StatusOK, eventResponse{Event: event})
}

func (h *InspectorHandler) Clear(w http.ResponseWriter, r *http.Request) {
	n := h.store.Clear()
	logging.FromContext(r.Context()).Info("webhook events cleared", "cleared", n)
	RespondJSON(w, http.StatusOK, clearEventsResponse{
		Message: "Webhooks cleared",
		Cleared: n,
	})
}

// Stream pushes each newly stored event as a server-sent event named
// "webhook" until the client goes away.
func (h *InspectorHandler) Stream(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	if h.events == nil {
		RespondAppError(w, ErrStreamingUnsupported, nil)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := h.events.Subscribe(ctx)
	if err != nil {
		log.Error("failed to subscribe to webhook broadcast", "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Debug("could not lift write deadline for stream", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		log.Warn("stream flush unsupported", "error", err)
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				log.Warn("failed to encode streamed event", "webhook_event_id", event.ID, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: webhook\ndata: %s\n\n", event.ID, data); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
