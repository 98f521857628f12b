package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/moviesearch/domain/search"
	"github.com/helixml/moviesearch/internal/config"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := rootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"ingest", "search", "serve", "stdio", "download", "model", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := versionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)
	assert.Contains(t, out.String(), "moviesearch dev")
}

func TestRenderTable(t *testing.T) {
	out := renderTable("toys", []search.Result{
		search.NewResult(1, "Toy Story (1995)", "Animation|Comedy", 0.91234),
	})
	assert.Contains(t, out, "Toy Story (1995)")
	assert.Contains(t, out, "Animation, Comedy")
	assert.Contains(t, out, "0.9123")

	assert.Contains(t, renderTable("nothing", nil), `No movies match "nothing"`)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, []search.Result{search.NewResult(6, "Heat (1995)", "Crime", 0.5)}))

	var got []resultJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, resultJSON{MovieID: 6, Title: "Heat (1995)", Genres: "Crime", Score: 0.5}, got[0])
}

func TestServeOverrides(t *testing.T) {
	cfg := config.NewAppConfig().Apply(serveOverrides("127.0.0.1", 9090)...)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())

	cfg = config.NewAppConfig().Apply(serveOverrides("", 0)...)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestEmbeddingOptions(t *testing.T) {
	opts, err := embeddingOptions(config.NewAppConfig())
	require.NoError(t, err)
	assert.Empty(t, opts)

	endpoint := config.NewEndpointWithOptions(
		config.WithBaseURL("http://localhost:11434/v1"),
		config.WithModel("nomic-embed-text"),
	)
	cfg := config.NewAppConfig().Apply(
		config.WithEmbeddingEndpoint(endpoint),
		config.WithHTTPCacheDir(t.TempDir()),
	)
	opts, err = embeddingOptions(cfg)
	require.NoError(t, err)
	assert.Len(t, opts, 2)

	all, err := clientOptions(cfg)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}
