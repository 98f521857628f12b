package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/helixml/moviesearch/application/service"
	"github.com/helixml/moviesearch/domain/search"
	"github.com/helixml/moviesearch/infrastructure/api"
)

type fakeSearcher struct{}

func (fakeSearcher) Find(_ context.Context, query string, limit int) ([]search.Result, error) {
	if limit <= 0 {
		return nil, service.ErrInvalidLimit
	}
	return []search.Result{search.NewResult(1, "Toy Story (1995)", "Animation", 0.8)}, nil
}

func (fakeSearcher) FindByVector(_ context.Context, _ search.Vector, _ int) ([]search.Result, error) {
	return nil, nil
}

func (fakeSearcher) Stats(context.Context) (service.Stats, error) {
	return service.Stats{Movies: 1, Embedded: 1, Dimension: 384}, nil
}

func newHandler() http.Handler {
	return api.NewAPIServer(fakeSearcher{}, nil, 10, "1.0.0-test", nil).Handler()
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestAPIServer_Routes(t *testing.T) {
	handler := newHandler()

	tests := []struct {
		target string
		status int
		body   string
	}{
		{"/healthz", http.StatusOK, `"status":"ok"`},
		{"/api/v1/search?q=toys", http.StatusOK, `"Toy Story (1995)"`},
		{"/api/v1/search?q=toys&limit=-1", http.StatusBadRequest, `"errors"`},
		{"/api/v1/stats", http.StatusOK, `"dimension":384`},
		{"/docs/", http.StatusOK, "swagger-ui"},
		{"/api/v1/unknown", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := get(t, handler, tt.target)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d; body: %s", w.Code, tt.status, w.Body.String())
			}
			if tt.body != "" && !strings.Contains(w.Body.String(), tt.body) {
				t.Errorf("body %q does not contain %q", w.Body.String(), tt.body)
			}
		})
	}
}

func TestAPIServer_OpenAPIUsesRequestHost(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/docs/openapi.json", nil)
	req.Host = "movies.internal:9000"
	w := httptest.NewRecorder()
	newHandler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"url": "http://movies.internal:9000/api/v1"`) {
		t.Errorf("server url not rewritten: %s", w.Body.String())
	}
	var spec map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &spec); err != nil {
		t.Fatalf("spec is not valid JSON: %v", err)
	}
}

func TestAPIServer_MCPInitialize(t *testing.T) {
	handler := newHandler()

	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": "2025-06-18",
			"capabilities":    map[string]any{},
			"clientInfo":      map[string]any{"name": "test", "version": "0.0.1"},
		},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"moviesearch"`) {
		t.Errorf("initialize response missing server name: %s", w.Body.String())
	}
}
