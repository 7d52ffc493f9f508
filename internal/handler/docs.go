package handler

import (
	"html/template"
	"log/slog"
	"net/http"
)

// DocsSpecPath is where ServeSpec is mounted; the docs page loads it from here.
const DocsSpecPath = "/docs/openapi.yaml"

func ServeSpec(spec []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := w.Write(spec); err != nil {
			slog.Debug("failed to write openapi document", "error", err)
		}
	}
}

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: {{.SpecURL}},
      dom_id: "#swagger-ui",
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: "BaseLayout"
    });
  </script>
</body>
</html>`))

// ServeDocs renders a Swagger UI page pointed at DocsSpecPath.
func ServeDocs(title string) http.HandlerFunc {
	data := struct{ Title, SpecURL string }{Title: title, SpecURL: DocsSpecPath}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := docsPage.Execute(w, data); err != nil {
			slog.Error("failed to render docs page", "error", err)
		}
	}
}
