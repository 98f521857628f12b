package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/helixml/moviesearch/domain/search"
)

var (
	// ErrInvalidLimit indicates a non-positive result count.
	ErrInvalidLimit = errors.New("limit must be positive")
	// ErrQueryEmbedding marks a failure to embed the query text, as opposed
	// to a failure of the store.
	ErrQueryEmbedding = errors.New("embed query")
)

// Ranker finds the movies whose embeddings have the highest dot product
// with a query.
type Ranker struct {
	store     search.VectorStore
	embedding Embedding
}

// NewRanker creates a Ranker.
func NewRanker(store search.VectorStore, embedding Embedding) (*Ranker, error) {
	if store == nil {
		return nil, fmt.Errorf("NewRanker: nil store")
	}
	if embedding == nil {
		return nil, fmt.Errorf("NewRanker: nil embedding")
	}
	return &Ranker{store: store, embedding: embedding}, nil
}

// Find embeds the query text and returns at most n results ordered by
// descending score.
func (r *Ranker) Find(ctx context.Context, query string, n int) ([]search.Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}

	vector, err := r.embedding.Encode(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryEmbedding, err)
	}

	return r.FindByVector(ctx, vector, n)
}

// FindByVector ranks stored entries against an already-embedded query.
func (r *Ranker) FindByVector(ctx context.Context, vector search.Vector, n int) ([]search.Result, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	if dim := r.store.Dimension(); dim > 0 {
		if err := vector.CheckDimension(dim); err != nil {
			return nil, err
		}
	}

	results, err := r.store.Search(ctx, vector, n)
	if err != nil {
		return nil, fmt.Errorf("search store: %w", err)
	}
	if len(results) > n {
		results = results[:n]
	}
	return results, nil
}
