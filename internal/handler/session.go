package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/josh-kwaku/kyc-verify/internal/domain"
	"github.com/josh-kwaku/kyc-verify/internal/logging"
)

const (
	WebhookPath         = "/api/veriff/webhook"
	maxSessionBodyBytes = 64 << 10
)

type sessionCreator interface {
	CreateSession(ctx context.Context, req domain.SessionRequest) (*domain.Session, error)
}

// SessionHandler proxies verification-session creation to the provider so
// the API key never reaches the browser.
type SessionHandler struct {
	sessions    sessionCreator
	callbackURL string
}

func NewSessionHandler(sessions sessionCreator, callbackURL string) *SessionHandler {
	return &SessionHandler{sessions: sessions, callbackURL: callbackURL}
}

type createSessionRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	DocumentType string `json:"documentType"`
	Country      string `json:"country"`
	Lang         string `json:"lang"`
	VendorData   string `json:"vendorData"`
	UserID       string `json:"userId"`
}

type createSessionResponse struct {
	SessionURL string `json:"sessionUrl"`
	SessionID  string `json:"sessionId"`
	Status     string `json:"status"`
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	// every field is optional; an unreadable body is the same as an empty one
	var body createSessionRequest
	if raw, err := io.ReadAll(io.LimitReader(r.Body, maxSessionBodyBytes)); err == nil && len(strings.TrimSpace(string(raw))) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			log.Debug("ignoring malformed session request body", "error", err)
			body = createSessionRequest{}
		}
	}

	vendorData := body.VendorData
	if vendorData == "" {
		vendorData = body.UserID
	}

	req := domain.SessionRequest{
		FirstName:    body.FirstName,
		LastName:     body.LastName,
		DocumentType: body.DocumentType,
		Country:      body.Country,
		Lang:         body.Lang,
		VendorData:   vendorData,
		CallbackURL:  h.resolveCallback(r),
	}.WithDefaults()

	sess, err := h.sessions.CreateSession(r.Context(), req)
	if err != nil {
		log.Error("failed to create verification session", "error", err)
		RespondDomainError(w, err)
		return
	}

	resp := createSessionResponse{
		SessionURL: sess.URL,
		SessionID:  sess.ID,
		Status:     sess.Status,
	}
	if resp.SessionID == "" {
		resp.SessionID = "session_" + uuid.NewString()
	}
	if resp.Status == "" {
		resp.Status = domain.SessionStatusCreated
	}

	log.Info("verification session created", "session_id", resp.SessionID, "callback_registered", req.CallbackURL != "")
	RespondJSON(w, http.StatusOK, resp)
}

// resolveCallback picks the configured callback or derives one from the
// request origin. The provider only accepts https callbacks, so anything else
// is dropped.
func (h *SessionHandler) resolveCallback(r *http.Request) string {
	callback := h.callbackURL
	if callback == "" && requestIsHTTPS(r) && r.Host != "" {
		callback = "https://" + r.Host + WebhookPath
	}
	if !strings.HasPrefix(callback, "https://") {
		return ""
	}
	return callback
}

func requestIsHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
