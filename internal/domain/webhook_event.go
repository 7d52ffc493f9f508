package domain

import (
	"encoding/json"
	"time"
)

type EventKind string

const (
	EventKindUnknown             EventKind = "unknown"
	EventKindVerificationStarted EventKind = "verification.started"
	EventKindSubmitted           EventKind = "verification.submitted"
	EventKindSuccess             EventKind = "verification.success"
	EventKindStatusChanged       EventKind = "verification.status.changed"
	EventKindDeclined            EventKind = "verification.declined"
	EventKindFailed              EventKind = "verification.failed"
)

func (k EventKind) Known() bool {
	switch k {
	case EventKindVerificationStarted, EventKindSubmitted, EventKindSuccess,
		EventKindStatusChanged, EventKindDeclined, EventKindFailed:
		return true
	}
	return false
}

type VerificationStatus string

const (
	VerificationStatusSuccess     VerificationStatus = "success"
	VerificationStatusApproved    VerificationStatus = "approved"
	VerificationStatusDeclined    VerificationStatus = "declined"
	VerificationStatusFailed      VerificationStatus = "failed"
	VerificationStatusResubmit    VerificationStatus = "resubmission_requested"
	VerificationStatusExpired     VerificationStatus = "expired"
	VerificationStatusAbandoned   VerificationStatus = "abandoned"
	VerificationStatusUnspecified VerificationStatus = "unspecified"
)

// Outcome collapses a provider status into success, declined, failed or
// unspecified for logging and display.
func (s VerificationStatus) Outcome() VerificationStatus {
	switch s {
	case VerificationStatusSuccess, VerificationStatusApproved:
		return VerificationStatusSuccess
	case VerificationStatusDeclined:
		return VerificationStatusDeclined
	case VerificationStatusFailed, VerificationStatusExpired, VerificationStatusAbandoned:
		return VerificationStatusFailed
	}
	return VerificationStatusUnspecified
}

// WebhookEvent is one received provider notification. It is created once by
// the receiver and never updated; RawPayload holds the body verbatim.
type WebhookEvent struct {
	ID                 string              `json:"id"`
	ReceivedAt         time.Time           `json:"receivedAt"`
	Kind               EventKind           `json:"kind"`
	VerificationStatus *VerificationStatus `json:"verificationStatus,omitempty"`
	VerificationID     *string             `json:"verificationId,omitempty"`
	RawPayload         json.RawMessage     `json:"rawPayload"`
}

// Clone returns a copy that shares no memory with e.
func (e WebhookEvent) Clone() WebhookEvent {
	out := e
	if e.VerificationStatus != nil {
		s := *e.VerificationStatus
		out.VerificationStatus = &s
	}
	if e.VerificationID != nil {
		id := *e.VerificationID
		out.VerificationID = &id
	}
	if e.RawPayload != nil {
		out.RawPayload = append(json.RawMessage(nil), e.RawPayload...)
	}
	return out
}
