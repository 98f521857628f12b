// Package e2e_test drives the HTTP API against a real client backed by
// SQLite, from CSV files through ingestion to ranked responses.
package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/helixml/moviesearch"
	"github.com/helixml/moviesearch/infrastructure/api"
	"github.com/helixml/moviesearch/infrastructure/dataset"
)

// axisEmbedder scores texts on three axes: animation, comedy, crime.
type axisEmbedder struct{}

func (axisEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		out[i] = []float32{
			float32(strings.Count(lower, "animation")),
			float32(strings.Count(lower, "comedy")),
			float32(strings.Count(lower, "crime")),
		}
	}
	return out, nil
}

var datasetFiles = map[string]string{
	dataset.MoviesFile: `movieId,title,genres
1,Toy Story (1995),Adventure|Animation|Children|Comedy|Fantasy
2,Grumpier Old Men (1995),Comedy|Romance
6,Heat (1995),Action|Crime|Thriller
`,
	dataset.RatingsFile: `userId,movieId,rating,timestamp
1,1,4.0,964982703
1,6,4.0,964982224
`,
	dataset.TagsFile: `userId,movieId,tag,timestamp
2,1,pixar,1445714994
18,6,crime,1460138360
`,
}

// TestServer wraps the API server for e2e testing.
type TestServer struct {
	t          *testing.T
	client     *moviesearch.Client
	httpServer *httptest.Server
}

// NewTestServer creates a test server over a fresh SQLite database. Nothing
// is ingested until Ingest is called.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	tmpDir := t.TempDir()
	client, err := moviesearch.New(
		moviesearch.WithDataDir(tmpDir),
		moviesearch.WithSQLite(filepath.Join(tmpDir, "test.db")),
		moviesearch.WithEmbedder(axisEmbedder{}),
		moviesearch.WithSearchLimit(2),
		moviesearch.WithReportInterval(0),
	)
	if err != nil {
		t.Fatalf("create moviesearch client: %v", err)
	}

	apiServer := api.NewAPIServer(client, client.Vectors(), client.SearchLimit(), "e2e", client.Logger())
	ts := &TestServer{
		t:          t,
		client:     client,
		httpServer: httptest.NewServer(apiServer.Handler()),
	}

	t.Cleanup(func() {
		ts.Close()
	})

	return ts
}

// Ingest writes the sample dataset and runs a full ingestion.
func (ts *TestServer) Ingest() {
	ts.t.Helper()
	dir := ts.t.TempDir()
	for name, body := range datasetFiles {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			ts.t.Fatalf("write %s: %v", name, err)
		}
	}
	if _, err := ts.client.Ingest(context.Background(), dataset.NewCSVSource(dir)); err != nil {
		ts.t.Fatalf("ingest: %v", err)
	}
}

// URL returns the base URL of the test server.
func (ts *TestServer) URL() string {
	return ts.httpServer.URL
}

// Close shuts down the test server.
func (ts *TestServer) Close() {
	ts.httpServer.Close()
	_ = ts.client.Close()
}

// GET performs a GET request and returns the response.
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()
	resp, err := http.Get(ts.URL() + path)
	if err != nil {
		ts.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with JSON body and returns the response.
func (ts *TestServer) POST(path string, body any) *http.Response {
	ts.t.Helper()
	jsonBody, err := json.Marshal(body)
	if err != nil {
		ts.t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(ts.URL()+path, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		ts.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// DecodeJSON decodes the response body as JSON into v.
func (ts *TestServer) DecodeJSON(resp *http.Response, v any) {
	ts.t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		ts.t.Fatalf("decode response: %v", err)
	}
}

// ReadBody reads and returns the response body as a string.
func (ts *TestServer) ReadBody(resp *http.Response) string {
	ts.t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ts.t.Fatalf("read body: %v", err)
	}
	return string(body)
}

// movieList is the decoded shape of a search response.
type movieList struct {
	Data []struct {
		Type       string `json:"type"`
		ID         string `json:"id"`
		Attributes struct {
			Title  string   `json:"title"`
			Genres []string `json:"genres"`
			Score  float64  `json:"score"`
		} `json:"attributes"`
	} `json:"data"`
	Meta map[string]any `json:"meta"`
}

func (l movieList) ids() []string {
	out := make([]string, len(l.Data))
	for i, d := range l.Data {
		out[i] = d.ID
	}
	return out
}

func intPtr(n int) *int {
	return &n
}

func strPtr(s string) *string {
	return &s
}
