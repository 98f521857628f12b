package search

import (
	"fmt"
	"log/slog"

	"github.com/helixml/moviesearch/domain/search"
	"github.com/helixml/moviesearch/internal/database"
)

// NewVectorStore returns the vector store matching the database dialect.
// A dim of 0 lets the first stored vector fix the dimension.
func NewVectorStore(db database.Database, dim int, logger *slog.Logger) (search.VectorStore, error) {
	if err := CheckDialect(db.Dialect()); err != nil {
		return nil, err
	}
	switch db.Dialect() {
	case database.DialectSingleStore:
		return NewSingleStoreVectorStore(db, dim, logger), nil
	case database.DialectPostgres:
		return NewPgvectorStore(db, dim, logger), nil
	default:
		return NewSQLiteVectorStore(db, dim, logger), nil
	}
}

// CheckDialect reports whether d can rank vectors. Plain MySQL speaks the
// SingleStore wire protocol but has neither DOT_PRODUCT nor JSON_ARRAY_PACK.
func CheckDialect(d database.Dialect) error {
	switch d {
	case database.DialectSQLite, database.DialectSingleStore, database.DialectPostgres:
		return nil
	case database.DialectMySQL:
		return fmt.Errorf("%w: %s has no DOT_PRODUCT, use singlestore://", database.ErrUnsupportedDriver, d)
	default:
		return fmt.Errorf("%w: %s", database.ErrUnsupportedDriver, d)
	}
}
