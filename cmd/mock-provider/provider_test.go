package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/kyc-verify/internal/signature"
)

type capturedWebhook struct {
	body      []byte
	signature string
}

func newCallbackServer(t *testing.T) (*httptest.Server, func() []capturedWebhook) {
	t.Helper()
	var (
		mu  sync.Mutex
		got []capturedWebhook
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, capturedWebhook{body: body, signature: r.Header.Get(signature.Header)})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []capturedWebhook {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedWebhook(nil), got...)
	}
}

func createSession(t *testing.T, h http.Handler, body string) map[string]string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(body))
	req.Header.Set("X-AUTH-CLIENT", "key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Status       string            `json:"status"`
		Verification map[string]string `json:"verification"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	return resp.Verification
}

func decide(h http.Handler, id, decision string) *httptest.ResponseRecorder {
	form := url.Values{"decision": {decision}}
	req := httptest.NewRequest(http.MethodPost, "/v/"+id+"/decision", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateSession_RequiresAPIKey(t *testing.T) {
	p := newProvider("http://mock", "http://app", "", "")
	rec := httptest.NewRecorder()

	p.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateSession_ReturnsHostedURL(t *testing.T) {
	p := newProvider("http://mock:8081/", "http://app", "", "")
	h := p.routes()

	v := createSession(t, h, `{"verification":{"vendorData":"user-1"}}`)

	require.NotEmpty(t, v["id"])
	assert.Equal(t, "http://mock:8081/v/"+v["id"], v["url"])
	assert.Equal(t, "created", v["status"])
	assert.NotEmpty(t, v["sessionToken"])

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v/"+v["id"], nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), v["id"])
}

func TestDecision_SendsSignedWebhookAndRedirects(t *testing.T) {
	tests := []struct {
		decision string
		wantPage string
	}{
		{decisionApproved, "/success"},
		{decisionDeclined, "/failed"},
	}

	for _, tt := range tests {
		t.Run(tt.decision, func(t *testing.T) {
			callback, received := newCallbackServer(t)
			p := newProvider("http://mock", "http://app", "", "secret")
			h := p.routes()

			v := createSession(t, h, `{"verification":{"callback":"`+callback.URL+`","vendorData":"user-1"}}`)
			rec := decide(h, v["id"], tt.decision)
			p.deliveries.Wait()

			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "http://app"+tt.wantPage+"?sessionId="+v["id"], rec.Header().Get("Location"))

			got := received()
			require.Len(t, got, 1)
			assert.True(t, signature.Verify(got[0].body, got[0].signature, "secret"))

			var payload map[string]any
			require.NoError(t, json.Unmarshal(got[0].body, &payload))
			assert.Equal(t, "verification.status.changed", payload["type"])
			verification := payload["verification"].(map[string]any)
			assert.Equal(t, v["id"], verification["id"])
			assert.Equal(t, tt.decision, verification["status"])
		})
	}
}

func TestDecision_FallsBackToConfiguredCallback(t *testing.T) {
	callback, received := newCallbackServer(t)
	p := newProvider("http://mock", "http://app", callback.URL, "")
	h := p.routes()

	v := createSession(t, h, `{}`)
	decide(h, v["id"], decisionApproved)
	p.deliveries.Wait()

	got := received()
	require.Len(t, got, 1)
	assert.Empty(t, got[0].signature)
}

func TestDecision_Invalid(t *testing.T) {
	p := newProvider("http://mock", "http://app", "", "")
	h := p.routes()
	v := createSession(t, h, `{}`)

	assert.Equal(t, http.StatusBadRequest, decide(h, v["id"], "maybe").Code)
	assert.Equal(t, http.StatusNotFound, decide(h, "missing", decisionApproved).Code)
}
