package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "verify", "success", "failed", "dashboard"}

// PageHandler renders the browser-facing pages. None of them read the event
// store; the dashboard talks to the inspector API from the browser.
type PageHandler struct {
	pages map[string]*template.Template
}

func NewPageHandler() (*PageHandler, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("NewPageHandler: parse %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &PageHandler{pages: pages}, nil
}

type resultPage struct {
	SessionID string
}

func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	// "/" is a catch-all pattern on the mux
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.render(w, "home", nil)
}

func (h *PageHandler) Verify(w http.ResponseWriter, r *http.Request) {
	h.render(w, "verify", nil)
}

func (h *PageHandler) Success(w http.ResponseWriter, r *http.Request) {
	h.render(w, "success", resultPage{SessionID: r.URL.Query().Get("sessionId")})
}

func (h *PageHandler) Failed(w http.ResponseWriter, r *http.Request) {
	h.render(w, "failed", resultPage{SessionID: r.URL.Query().Get("sessionId")})
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, "dashboard", nil)
}

func (h *PageHandler) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := h.pages[name]
	if !ok {
		slog.Error("unknown page", "page", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		slog.Error("failed to render page", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("failed to write page", "page", name, "error", err)
	}
}
