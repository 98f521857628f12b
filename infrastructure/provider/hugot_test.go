package provider

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

const testModelName = "sentence-transformers/all-MiniLM-L6-v2"

func placeModel(t *testing.T, dir string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tokenizer.json"), []byte(`{}`), 0o644))
	return dir
}

func TestHugotEmbedding_Embed(t *testing.T) {
	if !hasEmbeddedModel {
		t.Skip("skipping: requires -tags embed_model")
	}

	emb := NewHugotEmbedding(t.TempDir(), "")
	defer func() {
		require.NoError(t, emb.Close())
	}()

	first, err := emb.Embed(context.Background(), []string{"Toy Story (1995) Animation Children pixar"})
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.NotEmpty(t, first[0])

	second, err := emb.Embed(context.Background(), []string{"Toy Story (1995) Animation Children pixar"})
	require.NoError(t, err)
	require.Equal(t, first, second, "same text must give the same vector")
}

func TestHugotEmbedding_EmbedEmpty(t *testing.T) {
	emb := NewHugotEmbedding(t.TempDir(), "")

	embeddings, err := emb.Embed(context.Background(), []string{})
	require.NoError(t, err)
	require.Empty(t, embeddings)
}

func TestHugotEmbedding_EmbedOverCapacity(t *testing.T) {
	emb := NewHugotEmbedding(t.TempDir(), "")

	texts := make([]string, emb.Capacity()+1)
	for i := range texts {
		texts[i] = "text"
	}
	_, err := emb.Embed(context.Background(), texts)
	require.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestHugotEmbedding_Close(t *testing.T) {
	emb := NewHugotEmbedding(t.TempDir(), "")
	require.NoError(t, emb.Close())
	require.NoError(t, emb.Close())
}

func TestExtractEmbeddedModel(t *testing.T) {
	fakeFS := fstest.MapFS{
		"models/test-model/tokenizer.json":  {Data: []byte(`{"test": true}`)},
		"models/test-model/config.json":     {Data: []byte(`{"hidden_size": 384}`)},
		"models/test-model/onnx/model.onnx": {Data: []byte("fake-onnx-data")},
	}

	targetDir := t.TempDir()
	modelPath, err := extractEmbeddedModel(fakeFS, targetDir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(targetDir, "test-model"), modelPath)

	data, err := os.ReadFile(filepath.Join(modelPath, "onnx", "model.onnx"))
	require.NoError(t, err)
	require.Equal(t, "fake-onnx-data", string(data))

	again, err := extractEmbeddedModel(fakeFS, targetDir)
	require.NoError(t, err)
	require.Equal(t, modelPath, again)
}

func TestExtractEmbeddedModel_NoModelDir(t *testing.T) {
	emptyFS := fstest.MapFS{
		"models/.gitkeep": {Data: []byte("")},
	}

	_, err := extractEmbeddedModel(emptyFS, t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no model directory found")
}

func TestHugotEmbedding_DiskModelPath(t *testing.T) {
	root := t.TempDir()
	emb := NewHugotEmbedding(root, "")

	_, err := emb.diskModelPath()
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("readme"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "incomplete"), 0o755))
	_, err = emb.diskModelPath()
	require.Error(t, err)

	subdir := placeModel(t, filepath.Join(root, "my-model"))
	got, err := emb.diskModelPath()
	require.NoError(t, err)
	require.Equal(t, subdir, got)
	require.True(t, emb.Available())
}

func TestHugotEmbedding_DiskModelPathPrefersNamedModel(t *testing.T) {
	root := t.TempDir()
	placeModel(t, filepath.Join(root, "aaa-other"))
	named := placeModel(t, modelDir(root, testModelName))

	got, err := NewHugotEmbedding(root, testModelName).diskModelPath()
	require.NoError(t, err)
	require.Equal(t, named, got)
}

func TestDownloadModel_ReusesExistingCopy(t *testing.T) {
	root := t.TempDir()
	existing := placeModel(t, modelDir(root, testModelName))

	got, err := DownloadModel(testModelName, root)
	require.NoError(t, err)
	require.Equal(t, existing, got)
}

func TestHugotEmbedding_CancelledContext(t *testing.T) {
	emb := NewHugotEmbedding(t.TempDir(), "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := emb.Embed(ctx, []string{"hello"})
	require.Error(t, err)
}
