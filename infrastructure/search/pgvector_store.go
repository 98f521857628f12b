package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/helixml/moviesearch/domain/repository"
	"github.com/helixml/moviesearch/domain/search"
	"github.com/helixml/moviesearch/internal/database"
)

// SQL specific to pgvector. PostgreSQL has no dot product over bytea, so the
// column is a vector(N) and <#> (negative inner product) is negated.
const (
	pgvCreateExtension = `CREATE EXTENSION IF NOT EXISTS vector`

	pgvCreateTableTemplate = `
CREATE TABLE IF NOT EXISTS %s (
    movie_id BIGINT PRIMARY KEY,
    title TEXT NOT NULL,
    genres TEXT NOT NULL,
    all_tags TEXT NOT NULL,
    vector VECTOR(%d) NOT NULL
)`

	pgvCheckDimensionTemplate = `
SELECT a.atttypmod AS dimension
FROM pg_attribute a
JOIN pg_class c ON a.attrelid = c.oid
WHERE c.relname = '%s'
AND a.attname = 'vector'`

	pgvSearchTemplate = `
SELECT movie_id, title, genres, (vector <#> ?) * -1 AS score
FROM %s
ORDER BY score DESC, movie_id ASC
LIMIT ?`
)

// PgVectorEntity is a row of the vector table on PostgreSQL.
type PgVectorEntity struct {
	MovieID int64           `gorm:"column:movie_id;primaryKey;autoIncrement:false"`
	Title   string          `gorm:"column:title"`
	Genres  string          `gorm:"column:genres"`
	AllTags string          `gorm:"column:all_tags"`
	Vector  pgvector.Vector `gorm:"column:vector;type:vector"`
}

// PgvectorStore implements search.VectorStore using the pgvector extension.
type PgvectorStore struct {
	repo    database.Repository[PgVectorEntity, PgVectorEntity]
	dim     *dimension
	logger  *slog.Logger
	mu      sync.Mutex
	created bool
}

// NewPgvectorStore creates a new PgvectorStore. When dim is 0 the table is
// created by the first SaveAll, sized from its first vector.
func NewPgvectorStore(db database.Database, dim int, logger *slog.Logger) *PgvectorStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PgvectorStore{
		repo: database.NewRepositoryForTable[PgVectorEntity, PgVectorEntity](
			db,
			identityMapper[PgVectorEntity]{},
			"movie vector",
			TableName,
		),
		dim:    &dimension{value: dim},
		logger: logger,
	}
}

// Dimension returns the accepted vector length, or 0 if not yet known.
func (s *PgvectorStore) Dimension() int {
	return s.dim.get()
}

// Reset drops the vector table and recreates it when the dimension is known.
func (s *PgvectorStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db := s.repo.DB(ctx)
	if err := db.Exec(pgvCreateExtension).Error; err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	if err := db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, TableName)).Error; err != nil {
		return fmt.Errorf("drop %s: %w", TableName, err)
	}
	s.created = false

	if dim := s.dim.get(); dim > 0 {
		return s.createTable(ctx, dim)
	}
	return nil
}

// createTable must be called with mu held.
func (s *PgvectorStore) createTable(ctx context.Context, dim int) error {
	if s.created {
		return nil
	}
	db := s.repo.DB(ctx)
	if err := db.Exec(fmt.Sprintf(pgvCreateTableTemplate, TableName, dim)).Error; err != nil {
		return fmt.Errorf("create %s: %w", TableName, err)
	}

	var stored int
	result := db.Raw(fmt.Sprintf(pgvCheckDimensionTemplate, TableName)).Scan(&stored)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	if result.RowsAffected > 0 && stored != dim {
		return fmt.Errorf("%w: table has %d, store has %d", search.ErrDimensionMismatch, stored, dim)
	}

	s.created = true
	s.logger.Debug("vector table created", "table", TableName, "dimension", dim)
	return nil
}

// SaveAll validates and inserts entries in a single transaction.
func (s *PgvectorStore) SaveAll(ctx context.Context, entries []search.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	entities := make([]PgVectorEntity, len(entries))
	for i, e := range entries {
		if err := s.dim.check(e.Vector()); err != nil {
			return fmt.Errorf("movie %d: %w", e.MovieID(), err)
		}
		entities[i] = PgVectorEntity{
			MovieID: e.MovieID(),
			Title:   e.Title(),
			Genres:  e.Genres(),
			AllTags: e.AllTags(),
			Vector:  pgvector.NewVector(e.Vector().Floats()),
		}
	}

	s.mu.Lock()
	err := s.createTable(ctx, s.dim.get())
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.repo.SaveAll(ctx, entities)
}

// Find reads entries back ordered by movie ID after any caller ordering.
func (s *PgvectorStore) Find(ctx context.Context, options ...repository.Option) ([]search.Entry, error) {
	options = append(options, repository.WithOrderAsc("movie_id"))
	entities, err := s.repo.Find(ctx, options...)
	if err != nil {
		return nil, err
	}
	entries := make([]search.Entry, len(entities))
	for i, e := range entities {
		entries[i] = search.NewEntry(e.MovieID, e.Title, e.Genres, e.AllTags, search.NewVector(e.Vector.Slice()))
	}
	return entries, nil
}

// Search ranks stored movies by inner product against query.
func (s *PgvectorStore) Search(ctx context.Context, query search.Vector, limit int) ([]search.Result, error) {
	if limit <= 0 {
		return []search.Result{}, nil
	}
	if err := s.loadDimension(ctx); err != nil {
		return nil, err
	}
	if dim := s.dim.get(); dim > 0 {
		if err := query.CheckDimension(dim); err != nil {
			return nil, err
		}
	}

	var rows []scoredRow
	sql := fmt.Sprintf(pgvSearchTemplate, TableName)
	if err := s.repo.DB(ctx).Raw(sql, pgvector.NewVector(query.Floats()), limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("rank movies: %w", err)
	}
	return toResults(rows), nil
}

// Count returns the number of stored entries. It also picks up the stored
// vector length, so Dimension is known after a restart.
func (s *PgvectorStore) Count(ctx context.Context) (int64, error) {
	if err := s.loadDimension(ctx); err != nil {
		return 0, err
	}
	return s.repo.Count(ctx)
}

func (s *PgvectorStore) loadDimension(ctx context.Context) error {
	if s.dim.get() > 0 {
		return nil
	}
	var stored []int
	err := s.repo.DB(ctx).Raw(fmt.Sprintf(pgvCheckDimensionTemplate, TableName)).Scan(&stored).Error
	if err != nil {
		return errors.Join(ErrStoreNotInitialized, err)
	}
	if len(stored) > 0 && stored[0] > 0 {
		s.dim.learn(stored[0])
	}
	return nil
}
