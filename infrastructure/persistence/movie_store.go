package persistence

import (
	"github.com/helixml/moviesearch/domain/movie"
	"github.com/helixml/moviesearch/internal/database"
)

// MovieStore implements movie.MovieStore using GORM.
type MovieStore struct {
	database.Repository[movie.Movie, MovieModel]
}

// NewMovieStore creates a new MovieStore.
func NewMovieStore(db database.Database) MovieStore {
	return MovieStore{
		Repository: database.NewRepository[movie.Movie, MovieModel](db, MovieMapper{}, "movie"),
	}
}

// WithBatchSize returns a copy that inserts n rows per statement.
func (s MovieStore) WithBatchSize(n int) MovieStore {
	s.Repository = s.Repository.WithBatchSize(n)
	return s
}

// RatingStore implements movie.RatingStore using GORM.
type RatingStore struct {
	database.Repository[movie.Rating, RatingModel]
}

// NewRatingStore creates a new RatingStore.
func NewRatingStore(db database.Database) RatingStore {
	return RatingStore{
		Repository: database.NewRepository[movie.Rating, RatingModel](db, RatingMapper{}, "rating"),
	}
}

// WithBatchSize returns a copy that inserts n rows per statement.
func (s RatingStore) WithBatchSize(n int) RatingStore {
	s.Repository = s.Repository.WithBatchSize(n)
	return s
}

// TagStore implements movie.TagStore using GORM.
type TagStore struct {
	database.Repository[movie.Tag, TagModel]
}

// NewTagStore creates a new TagStore.
func NewTagStore(db database.Database) TagStore {
	return TagStore{
		Repository: database.NewRepository[movie.Tag, TagModel](db, TagMapper{}, "tag"),
	}
}

// WithBatchSize returns a copy that inserts n rows per statement.
func (s TagStore) WithBatchSize(n int) TagStore {
	s.Repository = s.Repository.WithBatchSize(n)
	return s
}
