package persistence

import (
	"context"
	"fmt"

	"github.com/helixml/moviesearch/domain/movie"
	"github.com/helixml/moviesearch/domain/repository"
	"github.com/helixml/moviesearch/internal/database"
)

// DocumentStore aggregates each movie's tags in SQL and returns the joined
// rows as documents.
type DocumentStore struct {
	db database.Database
}

// NewDocumentStore creates a new DocumentStore.
func NewDocumentStore(db database.Database) DocumentStore {
	return DocumentStore{db: db}
}

type documentRow struct {
	MovieID int64  `gorm:"column:movie_id"`
	Title   string `gorm:"column:title"`
	Genres  string `gorm:"column:genres"`
	AllTags string `gorm:"column:all_tags"`
}

// aggregate returns the dialect's expression that joins a movie's tags with
// single spaces in insertion order.
func (s DocumentStore) aggregate() string {
	switch s.db.Dialect() {
	case database.DialectPostgres:
		return "STRING_AGG(t.tag, ' ' ORDER BY t.id)"
	case database.DialectMySQL, database.DialectSingleStore:
		return "GROUP_CONCAT(t.tag ORDER BY t.id SEPARATOR ' ')"
	default:
		return "GROUP_CONCAT(t.tag, ' ' ORDER BY t.id)"
	}
}

// Documents returns one document per movie ordered by movie ID. Movies
// without tags get an empty tag string. Conditions apply to the movies table.
func (s DocumentStore) Documents(ctx context.Context, options ...repository.Option) ([]movie.Document, error) {
	q := repository.Build(options...)

	db := s.db.Session(ctx).
		Table("movies AS m").
		Select(fmt.Sprintf("m.movie_id, m.title, m.genres, COALESCE(%s, '') AS all_tags", s.aggregate())).
		Joins("LEFT JOIN tags AS t ON t.movie_id = m.movie_id")

	db = database.Where(db, "m", q).
		Group("m.movie_id, m.title, m.genres").
		Order("m.movie_id ASC")
	if q.Limit() > 0 {
		db = db.Limit(q.Limit())
	}

	var rows []documentRow
	if err := db.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("aggregate documents: %w", err)
	}

	docs := make([]movie.Document, len(rows))
	for i, r := range rows {
		docs[i] = movie.NewDocument(movie.NewMovie(r.MovieID, r.Title, r.Genres), r.AllTags)
	}
	return docs, nil
}
