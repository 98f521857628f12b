package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/moviesearch/domain/movie"
)

const (
	moviesCSV = "movieId,title,genres\n" +
		"1,Toy Story (1995),Adventure|Animation|Children|Comedy|Fantasy\n" +
		"11,\"American President, The (1995)\",Comedy|Drama|Romance\n" +
		"182715,Anon (2018),(no genres listed)\n"
	ratingsCSV = "userId,movieId,rating,timestamp\n" +
		"1,1,4.0,964982703\n" +
		"1,11,4.5,964981247\n"
	tagsCSV = "userId,movieId,tag,timestamp\n" +
		"2,1,pixar,1445714994\n" +
		"2,11,\"funny, smart\",1445714996\n"
)

func writeDataset(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, MoviesFile), []byte(moviesCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, RatingsFile), []byte(ratingsCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, TagsFile), []byte(tagsCSV), 0o644))
}

func zipDataset(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"ml-latest-small/" + MoviesFile:  moviesCSV,
		"ml-latest-small/" + RatingsFile: ratingsCSV,
		"ml-latest-small/" + TagsFile:    tagsCSV,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestCSVSource_Movies(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)

	var batches [][]movie.Movie
	err := NewCSVSource(dir).Movies(context.Background(), 2, func(b []movie.Movie) error {
		batches = append(batches, b)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 1)

	assert.Equal(t, "American President, The (1995)", batches[0][1].Title())
	assert.Equal(t, int64(182715), batches[1][0].ID())
	assert.Empty(t, batches[1][0].GenreList())
}

func TestCSVSource_RatingsAndTags(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)
	src := NewCSVSource(dir)
	ctx := context.Background()

	var ratings []movie.Rating
	require.NoError(t, src.Ratings(ctx, 10, func(b []movie.Rating) error {
		ratings = append(ratings, b...)
		return nil
	}))
	require.Len(t, ratings, 2)
	assert.Equal(t, 4.5, ratings[1].Rating())
	assert.Equal(t, time.Unix(964981247, 0).UTC(), ratings[1].Timestamp())

	var tags []movie.Tag
	require.NoError(t, src.Tags(ctx, 10, func(b []movie.Tag) error {
		tags = append(tags, b...)
		return nil
	}))
	require.Len(t, tags, 2)
	assert.Equal(t, "funny, smart", tags[1].Text())
	assert.Equal(t, int64(11), tags[1].MovieID())
}

func TestCSVSource_MalformedRow(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, MoviesFile), []byte("movieId,title,genres\nabc,Bad,Drama\n"), 0o644))

	err := NewCSVSource(dir).Movies(context.Background(), 10, func([]movie.Movie) error { return nil })
	require.ErrorIs(t, err, ErrMalformedRow)
	assert.Contains(t, err.Error(), "line 2")
}

func TestCSVSource_MalformedRowAfterMultilineField(t *testing.T) {
	dir := t.TempDir()
	body := "movieId,title,genres\n" +
		"1,\"Toy Story\n(1995)\",Animation\n" +
		"abc,Bad,Drama\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, MoviesFile), []byte(body), 0o644))

	err := NewCSVSource(dir).Movies(context.Background(), 10, func([]movie.Movie) error { return nil })
	require.ErrorIs(t, err, ErrMalformedRow)
	assert.Contains(t, err.Error(), "line 4")

	body = "movieId,title,genres\n" +
		"1,\"Toy Story\n(1995)\",Animation\n" +
		"2,Jumanji (1995)\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, MoviesFile), []byte(body), 0o644))

	err = NewCSVSource(dir).Movies(context.Background(), 10, func([]movie.Movie) error { return nil })
	require.ErrorIs(t, err, ErrMalformedRow)
	assert.Contains(t, err.Error(), "line 4")
}

func TestCSVSource_CallbackErrorStops(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, dir)
	boom := errors.New("boom")

	calls := 0
	err := NewCSVSource(dir).Movies(context.Background(), 1, func([]movie.Movie) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestLocate_NestedDirectory(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "ml-latest-small")
	require.NoError(t, os.Mkdir(nested, 0o755))
	writeDataset(t, nested)

	src, err := Locate(root)
	require.NoError(t, err)
	assert.Equal(t, nested, src.Dir())

	_, err = Locate(t.TempDir())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDownloader_FetchExtractsArchive(t *testing.T) {
	body := zipDataset(t)
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	dest := t.TempDir()
	d := NewDownloader(WithRetry(3, time.Millisecond), WithHTTPClient(srv.Client()))

	src, err := d.Fetch(context.Background(), srv.URL+"/ml-latest-small.zip", dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "ml-latest-small"), src.Dir())
	assert.Equal(t, int32(2), hits.Load())

	_, err = d.Fetch(context.Background(), srv.URL+"/ml-latest-small.zip", dest)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestDownloader_FetchGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := NewDownloader(WithRetry(2, time.Millisecond))
	_, err := d.Fetch(context.Background(), srv.URL, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestExtract_RejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("../evil.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	archive := filepath.Join(dir, "evil.zip")
	require.NoError(t, os.WriteFile(archive, buf.Bytes(), 0o644))

	err = Extract(archive, filepath.Join(dir, "out"))
	require.ErrorIs(t, err, ErrUnsafePath)
}
