package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPages(t *testing.T) {
	h, err := NewPageHandler()
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", h.Home)
	mux.HandleFunc("GET /verify", h.Verify)
	mux.HandleFunc("GET /success", h.Success)
	mux.HandleFunc("GET /failed", h.Failed)
	mux.HandleFunc("GET /webhooks-test", h.Dashboard)

	tests := []struct {
		name     string
		path     string
		want     int
		contains []string
	}{
		{"home", "/", http.StatusOK, []string{"Identity Verification", `href="/verify"`}},
		{"verify", "/verify", http.StatusOK, []string{"Verify Your Identity", "/api/veriff/session"}},
		{"success with session", "/success?sessionId=sess-42", http.StatusOK, []string{"Verification Successful!", "sess-42"}},
		{"success without session", "/success", http.StatusOK, []string{"Verification Successful!"}},
		{"failed", "/failed?sessionId=sess-43", http.StatusOK, []string{"Verification Failed", "sess-43"}},
		{"dashboard", "/webhooks-test", http.StatusOK, []string{"Webhook Events", "/api/veriff/webhooks", "5000"}},
		{"unknown path", "/nope", http.StatusNotFound, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			}
			for _, s := range tt.contains {
				assert.Contains(t, rec.Body.String(), s)
			}
		})
	}
}

func TestPages_EscapeSessionID(t *testing.T) {
	h, err := NewPageHandler()
	require.NoError(t, err)
	rec := httptest.NewRecorder()

	h.Success(rec, httptest.NewRequest(http.MethodGet, "/success?sessionId=%3Cscript%3E", nil))

	assert.NotContains(t, rec.Body.String(), "<script>alert")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}

func TestDocs(t *testing.T) {
	rec := httptest.NewRecorder()
	ServeDocs("KYC Verify API")(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>KYC Verify API</title>")
	assert.Contains(t, rec.Body.String(), "openapi.yaml")

	rec = httptest.NewRecorder()
	ServeSpec([]byte("openapi: 3.0.3\n"))(rec, httptest.NewRequest(http.MethodGet, DocsSpecPath, nil))

	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "openapi: 3.0.3\n", rec.Body.String())
}
