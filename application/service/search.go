package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/helixml/moviesearch/domain/movie"
	"github.com/helixml/moviesearch/domain/search"
	domainservice "github.com/helixml/moviesearch/domain/service"
)

// Stats describes what the search index holds.
type Stats struct {
	Movies    int64 `json:"movies"`
	Embedded  int64 `json:"embedded"`
	Dimension int   `json:"dimension"`
}

// Search answers similarity queries against the vector table.
type Search struct {
	ranker  *domainservice.Ranker
	vectors search.VectorStore
	movies  movie.MovieStore
	logger  *slog.Logger
}

// NewSearch creates a new Search service. movies may be nil, in which case
// Stats reports zero movies.
func NewSearch(embedding domainservice.Embedding, vectors search.VectorStore, movies movie.MovieStore, logger *slog.Logger) (*Search, error) {
	ranker, err := domainservice.NewRanker(vectors, embedding)
	if err != nil {
		return nil, fmt.Errorf("NewSearch: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Search{
		ranker:  ranker,
		vectors: vectors,
		movies:  movies,
		logger:  logger,
	}, nil
}

// Find embeds query and returns at most limit movies by descending score.
func (s *Search) Find(ctx context.Context, query string, limit int) ([]search.Result, error) {
	query = strings.TrimSpace(query)
	start := time.Now()
	results, err := s.ranker.Find(ctx, query, limit)
	if err != nil {
		return nil, rankError(err)
	}

	s.logger.Debug("search",
		slog.String("query", query),
		slog.Int("limit", limit),
		slog.Int("results", len(results)),
		slog.Duration("duration", time.Since(start)),
	)
	return results, nil
}

// FindByVector ranks stored movies against an already embedded query.
func (s *Search) FindByVector(ctx context.Context, vector search.Vector, limit int) ([]search.Result, error) {
	results, err := s.ranker.FindByVector(ctx, vector, limit)
	if err != nil {
		return nil, rankError(err)
	}
	return results, nil
}

// rankError attaches an application code to a ranker failure. Validation
// errors pass through unchanged.
func rankError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidLimit), errors.Is(err, ErrEmptyText):
		return err
	case errors.Is(err, domainservice.ErrQueryEmbedding):
		return Wrapf(err, CodeEmbeddingModel, "find")
	case errors.Is(err, ErrDimensionMismatch):
		return err
	default:
		return Wrapf(err, CodeStoreConnect, "rank movies")
	}
}

// Stats counts stored movies and embeddings.
func (s *Search) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	if s.movies != nil {
		n, err := s.movies.Count(ctx)
		if err != nil {
			return Stats{}, Wrapf(err, CodeStoreConnect, "count movies")
		}
		stats.Movies = n
	}
	n, err := s.vectors.Count(ctx)
	if err != nil {
		return Stats{}, Wrapf(err, CodeStoreConnect, "count embeddings")
	}
	stats.Embedded = n
	stats.Dimension = s.vectors.Dimension()
	return stats, nil
}
