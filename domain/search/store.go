package search

import (
	"context"

	"github.com/helixml/moviesearch/domain/repository"
)

// VectorStore persists movie embeddings and ranks them against a query
// vector using the backend's native dot-product function.
type VectorStore interface {
	// Dimension returns the fixed vector length the store accepts.
	Dimension() int

	// Reset drops and recreates the vector table.
	Reset(ctx context.Context) error

	// SaveAll persists entries. Every vector must match Dimension().
	SaveAll(ctx context.Context, entries []Entry) error

	// Find reads stored entries back, vectors included.
	Find(ctx context.Context, options ...repository.Option) ([]Entry, error)

	// Search returns at most limit rows ordered by descending dot product
	// against query.
	Search(ctx context.Context, query Vector, limit int) ([]Result, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int64, error)
}
