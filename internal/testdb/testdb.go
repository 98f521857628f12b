// Package testdb opens throwaway in-memory SQLite databases, with the
// DOT_PRODUCT function registered, for package tests.
package testdb

import (
	"context"
	"testing"

	"github.com/helixml/moviesearch/domain/movie"
	"github.com/helixml/moviesearch/infrastructure/persistence"
	"github.com/helixml/moviesearch/internal/database"
)

// Movies are three rows of the MovieLens small dataset.
var Movies = []movie.Movie{
	movie.NewMovie(1, "Toy Story (1995)", "Adventure|Animation|Children|Comedy|Fantasy"),
	movie.NewMovie(2, "Jumanji (1995)", "Adventure|Children|Fantasy"),
	movie.NewMovie(3, "Grumpier Old Men (1995)", "Comedy|Romance"),
}

func open(t *testing.T) database.Database {
	t.Helper()
	db, err := database.NewDatabase(context.Background(), "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("testdb: open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// New returns a database with the movies, ratings and tags tables.
func New(t *testing.T) database.Database {
	t.Helper()
	db := open(t)
	if err := persistence.AutoMigrate(db); err != nil {
		t.Fatalf("testdb: migrate: %v", err)
	}
	return db
}

// NewPlain returns an empty database. Vector stores create their table on
// Reset, so their tests start here.
func NewPlain(t *testing.T) database.Database {
	t.Helper()
	return open(t)
}

// WithSchema returns an empty database after running statements on it.
func WithSchema(t *testing.T, statements ...string) database.Database {
	t.Helper()
	db := open(t)
	session := db.Session(context.Background())
	for _, stmt := range statements {
		if err := session.Exec(stmt).Error; err != nil {
			t.Fatalf("testdb: %v\nSQL: %s", err, stmt)
		}
	}
	return db
}

// Seed inserts movies, or Movies when none are given, into a database made
// by New.
func Seed(t *testing.T, db database.Database, movies ...movie.Movie) {
	t.Helper()
	if len(movies) == 0 {
		movies = Movies
	}
	if err := persistence.NewMovieStore(db).SaveAll(context.Background(), movies); err != nil {
		t.Fatalf("testdb: seed movies: %v", err)
	}
}
