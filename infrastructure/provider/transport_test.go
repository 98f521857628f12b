package provider

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func newTestTransport(t *testing.T, inner http.RoundTripper) *CachingTransport {
	t.Helper()
	transport, err := NewCachingTransport(t.TempDir(), inner)
	if err != nil {
		t.Fatalf("unexpected error creating transport: %v", err)
	}
	t.Cleanup(func() { _ = transport.Close() })
	return transport
}

func roundTrip(t *testing.T, transport http.RoundTripper, method, url, body string) string {
	t.Helper()
	req, _ := http.NewRequest(method, url, strings.NewReader(body))
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, _ := io.ReadAll(resp.Body)
	return string(data)
}

func TestCachingTransport_CacheHit(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Custom", "test-value")
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}))
	defer srv.Close()

	transport := newTestTransport(t, srv.Client().Transport)

	for range 2 {
		if got := roundTrip(t, transport, http.MethodPost, srv.URL+"/v1/embeddings", `{"input":"hello"}`); got != `{"result":"ok"}` {
			t.Errorf("unexpected body: %s", got)
		}
	}

	if count.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", count.Load())
	}
	if hits, misses := transport.Stats(); hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d and %d", hits, misses)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/v1/embeddings", strings.NewReader(`{"input":"hello"}`))
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.Header.Get("X-Custom") != "test-value" {
		t.Errorf("expected X-Custom test-value, got %s", resp.Header.Get("X-Custom"))
	}
}

func TestCachingTransport_DifferentBodies(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	transport := newTestTransport(t, srv.Client().Transport)
	roundTrip(t, transport, http.MethodPost, srv.URL, `{"input":"hello"}`)
	roundTrip(t, transport, http.MethodPost, srv.URL, `{"input":"world"}`)

	if count.Load() != 2 {
		t.Errorf("expected 2 upstream calls, got %d", count.Load())
	}
}

func TestCachingTransport_GetIsNotCached(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	transport := newTestTransport(t, srv.Client().Transport)
	roundTrip(t, transport, http.MethodGet, srv.URL, "")
	roundTrip(t, transport, http.MethodGet, srv.URL, "")

	if count.Load() != 2 {
		t.Errorf("expected 2 upstream calls, got %d", count.Load())
	}
}

func TestCachingTransport_NonSuccessNotCached(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"fail"}`))
	}))
	defer srv.Close()

	transport := newTestTransport(t, srv.Client().Transport)
	roundTrip(t, transport, http.MethodPost, srv.URL, "body")
	roundTrip(t, transport, http.MethodPost, srv.URL, "body")

	if count.Load() != 2 {
		t.Errorf("expected 2 upstream calls (no caching for 500), got %d", count.Load())
	}
}

func TestCachingTransport_CorruptCacheEntry(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	transport, err := NewCachingTransport(dir, srv.Client().Transport)
	if err != nil {
		t.Fatalf("unexpected error creating transport: %v", err)
	}

	roundTrip(t, transport, http.MethodPost, srv.URL+"/api", "body")

	path := filepath.Join(dir, cacheKey(http.MethodPost, srv.URL+"/api", []byte("body"))+".json")
	if err := os.WriteFile(path, []byte("not json{{{"), 0o644); err != nil {
		t.Fatalf("corrupt cache: %v", err)
	}

	if got := roundTrip(t, transport, http.MethodPost, srv.URL+"/api", "body"); got != `{"ok":true}` {
		t.Errorf("unexpected body: %s", got)
	}
	if count.Load() != 2 {
		t.Errorf("expected 2 upstream calls after corruption, got %d", count.Load())
	}
}

func TestCachingTransport_InnerError(t *testing.T) {
	transport := newTestTransport(t, &failingTransport{})

	req, _ := http.NewRequest(http.MethodPost, "http://localhost/api", strings.NewReader("body"))
	if _, err := transport.RoundTrip(req); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestCachingTransport_EmbeddingProvider(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)

		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		data := make([]openai.Embedding, len(req.Input))
		for i := range req.Input {
			data[i] = openai.Embedding{Index: i, Embedding: []float32{0.1, 0.2, 0.3}}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.EmbeddingResponse{
			Data:  data,
			Model: openai.SmallEmbedding3,
			Usage: openai.Usage{PromptTokens: 10, TotalTokens: 10},
		})
	}))
	defer srv.Close()

	p := NewOpenAIEmbedding(OpenAIConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/v1",
		MaxRetries: 1,
		Transport:  newTestTransport(t, srv.Client().Transport),
	})

	ctx := t.Context()
	texts := []string{"Toy Story (1995) Animation", "Heat (1995) Action Crime"}

	first, err := p.Embed(ctx, texts)
	if err != nil {
		t.Fatalf("first embed: %v", err)
	}
	second, err := p.Embed(ctx, texts)
	if err != nil {
		t.Fatalf("second embed: %v", err)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 embeddings per call, got %d and %d", len(first), len(second))
	}
	if count.Load() != 1 {
		t.Errorf("expected 1 upstream call (cached), got %d", count.Load())
	}

	if _, err := p.Embed(ctx, []string{"different text"}); err != nil {
		t.Fatalf("third embed: %v", err)
	}
	if count.Load() != 2 {
		t.Errorf("expected 2 upstream calls after different texts, got %d", count.Load())
	}
}

// failingTransport always returns an error.
type failingTransport struct{}

func (f *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, http.ErrServerClosed
}
