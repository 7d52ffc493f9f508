package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveness(t *testing.T) {
	h := NewHealthHandler("1.2.3", nil)
	rec := httptest.NewRecorder()

	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestReadiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]Checker
		wantStatus int
		wantChecks map[string]any
	}{
		{
			name:       "no checks",
			wantStatus: http.StatusOK,
			wantChecks: map[string]any{},
		},
		{
			name:       "all healthy",
			checks:     map[string]Checker{"redis": ok, "event_store": ok},
			wantStatus: http.StatusOK,
			wantChecks: map[string]any{"redis": "ok", "event_store": "ok"},
		},
		{
			name:       "one down",
			checks:     map[string]Checker{"redis": down, "event_store": ok},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]any{"redis": "down", "event_store": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("dev", tt.checks)
			rec := httptest.NewRecorder()

			h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantChecks, body["checks"])
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "ok", body["status"])
			} else {
				assert.Equal(t, "down", body["status"])
			}
		})
	}
}
