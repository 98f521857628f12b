package movie

import (
	"context"

	"github.com/helixml/moviesearch/domain/repository"
)

// MovieStore persists movies.
type MovieStore interface {
	SaveAll(ctx context.Context, movies []Movie) error
	Find(ctx context.Context, options ...repository.Option) ([]Movie, error)
	Count(ctx context.Context, options ...repository.Option) (int64, error)
}

// RatingStore persists ratings.
type RatingStore interface {
	SaveAll(ctx context.Context, ratings []Rating) error
	Count(ctx context.Context, options ...repository.Option) (int64, error)
}

// TagStore persists tags.
type TagStore interface {
	SaveAll(ctx context.Context, tags []Tag) error
	Count(ctx context.Context, options ...repository.Option) (int64, error)
}

// DocumentStore aggregates stored movies and tags into documents.
type DocumentStore interface {
	// Documents returns one document per movie, ordered by movie ID.
	Documents(ctx context.Context, options ...repository.Option) ([]Document, error)
}

// Source streams raw dataset rows. Each callback is invoked with batches of
// at most batchSize rows; returning an error stops the iteration.
type Source interface {
	Movies(ctx context.Context, batchSize int, fn func([]Movie) error) error
	Ratings(ctx context.Context, batchSize int, fn func([]Rating) error) error
	Tags(ctx context.Context, batchSize int, fn func([]Tag) error) error
}
