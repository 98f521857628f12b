// Package api serves the movie search HTTP API and its documentation.
package api

import (
	"bytes"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed openapi.json
var openapiSpec []byte

// specServerPlaceholder is replaced with the requesting host's base URL.
const specServerPlaceholder = `"url": "//localhost:8080/api/v1"`

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>moviesearch API</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" charset="UTF-8"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({ url: %q, dom_id: '#swagger-ui', deepLinking: true });
        };
    </script>
</body>
</html>`

// SwaggerUIHTML returns a Swagger UI page loading the spec at specURL.
func SwaggerUIHTML(specURL string) string {
	return fmt.Sprintf(swaggerPage, specURL)
}

// DocsRouter sets up documentation routes.
type DocsRouter struct {
	specURL string
}

// NewDocsRouter creates a new documentation router.
func NewDocsRouter(specURL string) *DocsRouter {
	return &DocsRouter{specURL: specURL}
}

// Routes returns the chi router for documentation endpoints.
func (d *DocsRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", d.page)
	router.Get("/openapi.json", d.spec)
	return router
}

func (d *DocsRouter) page(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(SwaggerUIHTML(d.specURL)))
}

// spec serves the OpenAPI document with its server URL pointing at the
// requesting host so "Try it out" works behind proxies.
func (d *DocsRouter) spec(w http.ResponseWriter, r *http.Request) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	host := r.Host
	if forwarded := r.Header.Get("X-Forwarded-Host"); forwarded != "" {
		host = forwarded
	}

	server := fmt.Sprintf(`"url": "%s://%s/api/v1"`, scheme, host)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(bytes.ReplaceAll(openapiSpec, []byte(specServerPlaceholder), []byte(server)))
}
