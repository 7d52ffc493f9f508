package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookEvent_CloneIsIndependent(t *testing.T) {
	status := VerificationStatusApproved
	vid := "v1"
	orig := WebhookEvent{
		ID:                 "webhook_1",
		ReceivedAt:         time.Now().UTC(),
		Kind:               EventKindStatusChanged,
		VerificationStatus: &status,
		VerificationID:     &vid,
		RawPayload:         json.RawMessage(`{"a":1}`),
	}

	c := orig.Clone()
	c.RawPayload[2] = 'b'
	*c.VerificationStatus = VerificationStatusDeclined
	*c.VerificationID = "v2"

	assert.Equal(t, json.RawMessage(`{"a":1}`), orig.RawPayload)
	assert.Equal(t, VerificationStatusApproved, *orig.VerificationStatus)
	assert.Equal(t, "v1", *orig.VerificationID)
}

func TestWebhookEvent_JSONOmitsAbsentFields(t *testing.T) {
	e := WebhookEvent{
		ID:         "webhook_1",
		ReceivedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Kind:       EventKindUnknown,
		RawPayload: json.RawMessage(`{}`),
	}

	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":"webhook_1","receivedAt":"2026-01-02T03:04:05Z","kind":"unknown","rawPayload":{}}`,
		string(b))
}

func TestEventKind_Known(t *testing.T) {
	assert.True(t, EventKindSuccess.Known())
	assert.True(t, EventKindStatusChanged.Known())
	assert.False(t, EventKindUnknown.Known())
	assert.False(t, EventKind("something.new").Known())
}

func TestVerificationStatus_Outcome(t *testing.T) {
	tests := map[VerificationStatus]VerificationStatus{
		VerificationStatusApproved:  VerificationStatusSuccess,
		VerificationStatusSuccess:   VerificationStatusSuccess,
		VerificationStatusDeclined:  VerificationStatusDeclined,
		VerificationStatusExpired:   VerificationStatusFailed,
		VerificationStatusResubmit:  VerificationStatusUnspecified,
		VerificationStatus("weird"): VerificationStatusUnspecified,
	}
	for in, want := range tests {
		assert.Equal(t, want, in.Outcome(), "status %q", in)
	}
}

func TestSessionRequest_WithDefaults(t *testing.T) {
	r := SessionRequest{Country: "EE"}.WithDefaults()
	assert.Equal(t, "PASSPORT", r.DocumentType)
	assert.Equal(t, "EE", r.Country)
	assert.Equal(t, "en", r.Lang)
}
