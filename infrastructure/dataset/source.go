// Package dataset reads the MovieLens archive: download, unzip and CSV parsing.
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/helixml/moviesearch/domain/movie"
)

// MovieLens file names.
const (
	MoviesFile  = "movies.csv"
	RatingsFile = "ratings.csv"
	TagsFile    = "tags.csv"
)

// ErrMalformedRow indicates a CSV row that does not match the MovieLens layout.
var ErrMalformedRow = errors.New("malformed dataset row")

// ErrNotFound indicates no MovieLens files were found under a directory.
var ErrNotFound = errors.New("dataset not found")

// CSVSource implements movie.Source over an unpacked MovieLens directory.
type CSVSource struct {
	dir string
}

// NewCSVSource creates a CSVSource reading from dir.
func NewCSVSource(dir string) CSVSource {
	return CSVSource{dir: dir}
}

// Dir returns the directory holding the CSV files.
func (s CSVSource) Dir() string { return s.dir }

// Locate returns a source for the first directory at or one level below root
// that contains movies.csv.
func Locate(root string) (CSVSource, error) {
	if fileExists(filepath.Join(root, MoviesFile)) {
		return NewCSVSource(root), nil
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return CSVSource{}, fmt.Errorf("%w: %s: %w", ErrNotFound, root, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if fileExists(filepath.Join(dir, MoviesFile)) {
			return NewCSVSource(dir), nil
		}
	}
	return CSVSource{}, fmt.Errorf("%w: no %s under %s", ErrNotFound, MoviesFile, root)
}

// Movies streams movies.csv (movieId,title,genres).
func (s CSVSource) Movies(ctx context.Context, batchSize int, fn func([]movie.Movie) error) error {
	return readBatches(ctx, filepath.Join(s.dir, MoviesFile), 3, batchSize, parseMovie, fn)
}

// Ratings streams ratings.csv (userId,movieId,rating,timestamp).
func (s CSVSource) Ratings(ctx context.Context, batchSize int, fn func([]movie.Rating) error) error {
	return readBatches(ctx, filepath.Join(s.dir, RatingsFile), 4, batchSize, parseRating, fn)
}

// Tags streams tags.csv (userId,movieId,tag,timestamp).
func (s CSVSource) Tags(ctx context.Context, batchSize int, fn func([]movie.Tag) error) error {
	return readBatches(ctx, filepath.Join(s.dir, TagsFile), 4, batchSize, parseTag, fn)
}

func parseMovie(rec []string) (movie.Movie, error) {
	id, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return movie.Movie{}, fmt.Errorf("movieId %q: %w", rec[0], err)
	}
	return movie.NewMovie(id, rec[1], rec[2]), nil
}

func parseRating(rec []string) (movie.Rating, error) {
	ids, err := parseIDs(rec[0], rec[1])
	if err != nil {
		return movie.Rating{}, err
	}
	rating, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return movie.Rating{}, fmt.Errorf("rating %q: %w", rec[2], err)
	}
	ts, err := parseTimestamp(rec[3])
	if err != nil {
		return movie.Rating{}, err
	}
	return movie.NewRating(ids[0], ids[1], rating, ts), nil
}

func parseTag(rec []string) (movie.Tag, error) {
	ids, err := parseIDs(rec[0], rec[1])
	if err != nil {
		return movie.Tag{}, err
	}
	ts, err := parseTimestamp(rec[3])
	if err != nil {
		return movie.Tag{}, err
	}
	return movie.NewTag(ids[0], ids[1], rec[2], ts), nil
}

func parseIDs(user, film string) ([2]int64, error) {
	u, err := strconv.ParseInt(user, 10, 64)
	if err != nil {
		return [2]int64{}, fmt.Errorf("userId %q: %w", user, err)
	}
	m, err := strconv.ParseInt(film, 10, 64)
	if err != nil {
		return [2]int64{}, fmt.Errorf("movieId %q: %w", film, err)
	}
	return [2]int64{u, m}, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", raw, err)
	}
	return time.Unix(secs, 0).UTC(), nil
}

// readBatches parses a headered CSV file and hands rows to fn in batches.
// Line numbers in errors are the 1-based file lines a record starts on, so
// quoted fields spanning several lines are accounted for.
func readBatches[T any](
	ctx context.Context,
	path string,
	fields int,
	batchSize int,
	parse func([]string) (T, error),
	fn func([]T) error,
) error {
	if batchSize <= 0 {
		batchSize = 1
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields
	r.ReuseRecord = true

	if _, err := r.Read(); err != nil {
		return fmt.Errorf("read %s header: %w", filepath.Base(path), err)
	}

	batch := make([]T, 0, batchSize)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ParseError carries its own line number.
			return fmt.Errorf("%w: %s: %w", ErrMalformedRow, filepath.Base(path), err)
		}
		item, err := parse(rec)
		if err != nil {
			line, _ := r.FieldPos(0)
			return fmt.Errorf("%w: %s line %d: %w", ErrMalformedRow, filepath.Base(path), line, err)
		}
		batch = append(batch, item)
		if len(batch) == batchSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(batch); err != nil {
				return err
			}
			batch = make([]T, 0, batchSize)
		}
	}
	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
