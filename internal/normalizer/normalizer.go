// Package normalizer turns provider webhook payloads of any shape into
// domain.WebhookEvent records.
package normalizer

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/google/uuid"

	"github.com/josh-kwaku/kyc-verify/internal/domain"
)

const idPrefix = "webhook_"

const (
	pathType               = "$.type"
	pathEvent              = "$.event"
	pathVerificationStatus = "$.verification.status"
	pathVerificationID     = "$.verification.id"
)

type Normalizer struct {
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

type Option func(*Normalizer)

func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(n *Normalizer) { n.newID = gen }
}

func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) { n.logger = l }
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		now:    time.Now,
		newID:  func() string { return idPrefix + uuid.NewString() },
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize never fails. payload is the decoded JSON tree (map, slice,
// scalar or nil); raw is kept verbatim as the event's payload.
func (n *Normalizer) Normalize(payload any, raw json.RawMessage) (event domain.WebhookEvent) {
	event = domain.WebhookEvent{
		ID:         n.newID(),
		ReceivedAt: n.now().UTC(),
		Kind:       domain.EventKindUnknown,
		RawPayload: append(json.RawMessage(nil), raw...),
	}

	defer func() {
		if r := recover(); r != nil {
			n.logger.Warn("payload field extraction panicked", "webhook_event_id", event.ID, "panic", r)
			event.Kind = domain.EventKindUnknown
			event.VerificationStatus = nil
			event.VerificationID = nil
		}
	}()

	if kind, ok := lookupString(payload, pathType); ok {
		event.Kind = domain.EventKind(kind)
	} else if kind, ok := lookupString(payload, pathEvent); ok {
		event.Kind = domain.EventKind(kind)
	}

	if status, ok := lookupString(payload, pathVerificationStatus); ok {
		s := domain.VerificationStatus(status)
		event.VerificationStatus = &s
	}
	if id, ok := lookupString(payload, pathVerificationID); ok {
		event.VerificationID = &id
	}

	if event.Kind != domain.EventKindUnknown && !event.Kind.Known() {
		n.logger.Debug("unrecognized webhook event kind", "kind", event.Kind)
	}

	return event
}

// lookupString reports a non-empty string at path. Missing keys, wrong
// container types and non-string leaves all count as absent.
func lookupString(payload any, path string) (string, bool) {
	if payload == nil {
		return "", false
	}
	v, err := jsonpath.Get(path, payload)
	if err != nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
