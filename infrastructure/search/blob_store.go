package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/helixml/moviesearch/domain/repository"
	"github.com/helixml/moviesearch/domain/search"
	"github.com/helixml/moviesearch/internal/database"
)

// blobDialect holds the SQL that differs between blob-backed backends.
type blobDialect struct {
	name           string
	createTable    string
	storedDim      string
	scoreTemplate  string
	queryParameter func(search.Vector) (any, error)
}

var sqliteDialect = blobDialect{
	name: "sqlite",
	createTable: `
CREATE TABLE IF NOT EXISTS %s (
    movie_id INTEGER PRIMARY KEY,
    title TEXT NOT NULL,
    genres TEXT NOT NULL,
    all_tags TEXT NOT NULL,
    vector BLOB NOT NULL
)`,
	storedDim: `SELECT vec_length(vector) FROM %s LIMIT 1`,
	// The blob placeholder must not follow "(": GORM expands a []byte bound
	// there into one placeholder per byte.
	scoreTemplate: `DOT_PRODUCT(vector, ?)`,
	queryParameter: func(v search.Vector) (any, error) {
		return database.PackFloat32(v.Floats())
	},
}

var singleStoreDialect = blobDialect{
	name: "singlestore",
	createTable: `
CREATE TABLE IF NOT EXISTS %s (
    movie_id BIGINT PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    genres VARCHAR(255) NOT NULL,
    all_tags LONGTEXT NOT NULL,
    vector LONGBLOB NOT NULL
)`,
	storedDim:     `SELECT LENGTH(vector) DIV 4 FROM %s LIMIT 1`,
	scoreTemplate: `DOT_PRODUCT(vector, JSON_ARRAY_PACK(?))`,
	queryParameter: func(v search.Vector) (any, error) {
		raw, err := json.Marshal(v.Floats())
		if err != nil {
			return nil, fmt.Errorf("encode query vector: %w", err)
		}
		return string(raw), nil
	},
}

const blobSearchTemplate = `
SELECT movie_id, title, genres, %s AS score
FROM %s
ORDER BY score DESC, movie_id ASC
LIMIT ?`

// BlobVectorStore implements search.VectorStore for backends that keep the
// embedding as packed float32 bytes and rank with a DOT_PRODUCT function.
type BlobVectorStore struct {
	repo    database.Repository[BlobVectorEntity, BlobVectorEntity]
	dialect blobDialect
	dim     *dimension
	logger  *slog.Logger
}

// NewSQLiteVectorStore creates a BlobVectorStore for SQLite. DOT_PRODUCT is
// the function the database package registers on every connection.
func NewSQLiteVectorStore(db database.Database, dim int, logger *slog.Logger) *BlobVectorStore {
	return newBlobVectorStore(db, sqliteDialect, dim, logger)
}

// NewSingleStoreVectorStore creates a BlobVectorStore for SingleStore and
// other MySQL-protocol servers that provide DOT_PRODUCT and JSON_ARRAY_PACK.
func NewSingleStoreVectorStore(db database.Database, dim int, logger *slog.Logger) *BlobVectorStore {
	return newBlobVectorStore(db, singleStoreDialect, dim, logger)
}

func newBlobVectorStore(db database.Database, dialect blobDialect, dim int, logger *slog.Logger) *BlobVectorStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlobVectorStore{
		repo: database.NewRepositoryForTable[BlobVectorEntity, BlobVectorEntity](
			db,
			identityMapper[BlobVectorEntity]{},
			"movie vector",
			TableName,
		),
		dialect: dialect,
		dim:     &dimension{value: dim},
		logger:  logger,
	}
}

// Dimension returns the accepted vector length, or 0 if not yet known.
func (s *BlobVectorStore) Dimension() int {
	return s.dim.get()
}

// Reset drops and recreates the vector table.
func (s *BlobVectorStore) Reset(ctx context.Context) error {
	db := s.repo.DB(ctx)
	if err := db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, TableName)).Error; err != nil {
		return fmt.Errorf("drop %s: %w", TableName, err)
	}
	if err := db.Exec(fmt.Sprintf(s.dialect.createTable, TableName)).Error; err != nil {
		return fmt.Errorf("create %s: %w", TableName, err)
	}
	s.logger.Debug("vector table reset", "table", TableName, "dialect", s.dialect.name)
	return nil
}

// SaveAll validates and inserts entries in a single transaction.
func (s *BlobVectorStore) SaveAll(ctx context.Context, entries []search.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	entities := make([]BlobVectorEntity, len(entries))
	for i, e := range entries {
		if err := s.dim.check(e.Vector()); err != nil {
			return fmt.Errorf("movie %d: %w", e.MovieID(), err)
		}
		entity, err := newBlobVectorEntity(e)
		if err != nil {
			return err
		}
		entities[i] = entity
	}
	return s.repo.SaveAll(ctx, entities)
}

// Find reads entries back ordered by movie ID after any caller ordering.
func (s *BlobVectorStore) Find(ctx context.Context, options ...repository.Option) ([]search.Entry, error) {
	options = append(options, repository.WithOrderAsc("movie_id"))
	entities, err := s.repo.Find(ctx, options...)
	if err != nil {
		return nil, err
	}
	entries := make([]search.Entry, len(entities))
	for i, e := range entities {
		entry, err := e.entry()
		if err != nil {
			return nil, err
		}
		entries[i] = entry
	}
	return entries, nil
}

// Search ranks stored movies by DOT_PRODUCT against query.
func (s *BlobVectorStore) Search(ctx context.Context, query search.Vector, limit int) ([]search.Result, error) {
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

	param, err := s.dialect.queryParameter(query)
	if err != nil {
		return nil, err
	}

	var rows []scoredRow
	sql := fmt.Sprintf(blobSearchTemplate, s.dialect.scoreTemplate, TableName)
	if err := s.repo.DB(ctx).Raw(sql, param, limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("rank movies: %w", err)
	}
	return toResults(rows), nil
}

// Count returns the number of stored entries. It also picks up the stored
// vector length, so Dimension is known after a restart.
func (s *BlobVectorStore) Count(ctx context.Context) (int64, error) {
	if err := s.loadDimension(ctx); err != nil {
		return 0, err
	}
	return s.repo.Count(ctx)
}

// loadDimension reads the stored vector length when none is configured, so
// a fresh process can validate queries against an existing table.
func (s *BlobVectorStore) loadDimension(ctx context.Context) error {
	if s.dim.get() > 0 {
		return nil
	}
	var stored []int
	err := s.repo.DB(ctx).Raw(fmt.Sprintf(s.dialect.storedDim, TableName)).Scan(&stored).Error
	if err != nil {
		return errors.Join(ErrStoreNotInitialized, err)
	}
	if len(stored) > 0 {
		s.dim.learn(stored[0])
	}
	return nil
}
