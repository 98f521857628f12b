package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/helixml/moviesearch/domain/search"
)

// ErrEmptyText indicates a text with nothing to embed after trimming.
var ErrEmptyText = errors.New("text cannot be empty")

// Embedding turns movie text into fixed-length vectors.
type Embedding interface {
	// Encode embeds a single text.
	Encode(ctx context.Context, text string) (search.Vector, error)

	// EncodeAll embeds texts in batches, returning one vector per text in
	// input order.
	EncodeAll(ctx context.Context, texts []string) ([]search.Vector, error)

	// Dimension returns the fixed output length, or 0 if nothing has been
	// embedded yet and no dimension was configured.
	Dimension() int
}

// EmbeddingService implements Embedding on top of a provider.
type EmbeddingService struct {
	embedder search.Embedder
	budget   search.TokenBudget

	mu        sync.Mutex
	dimension int
}

// NewEmbedding creates a new embedding service.
// The budget controls text truncation and batching. A dimension of 0 lets
// the first produced vector fix the dimension.
func NewEmbedding(embedder search.Embedder, budget search.TokenBudget, dimension int) (*EmbeddingService, error) {
	if embedder == nil {
		return nil, fmt.Errorf("NewEmbedding: nil embedder")
	}
	if dimension < 0 {
		return nil, fmt.Errorf("NewEmbedding: negative dimension %d", dimension)
	}
	return &EmbeddingService{
		embedder:  embedder,
		budget:    budget,
		dimension: dimension,
	}, nil
}

// Dimension returns the fixed output length.
func (s *EmbeddingService) Dimension() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dimension
}

// Encode embeds a single text.
func (s *EmbeddingService) Encode(ctx context.Context, text string) (search.Vector, error) {
	vectors, err := s.EncodeAll(ctx, []string{text})
	if err != nil {
		return search.Vector{}, err
	}
	return vectors[0], nil
}

// EncodeAll embeds texts: validate → batch → embed → check dimension.
func (s *EmbeddingService) EncodeAll(ctx context.Context, texts []string) ([]search.Vector, error) {
	if len(texts) == 0 {
		return []search.Vector{}, nil
	}

	cleaned := make([]string, len(texts))
	for i, text := range texts {
		cleaned[i] = strings.TrimSpace(text)
		if cleaned[i] == "" {
			return nil, fmt.Errorf("text %d: %w", i, ErrEmptyText)
		}
	}

	result := make([]search.Vector, 0, len(cleaned))
	offset := 0

	for _, batch := range s.budget.Batches(cleaned) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := offset
		end := offset + len(batch)

		raw, err := s.embedder.Embed(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}
		if len(raw) != len(batch) {
			return nil, fmt.Errorf("embed batch [%d:%d]: count mismatch: got %d, expected %d", start, end, len(raw), len(batch))
		}

		for j, values := range raw {
			v := search.NewVector(values)
			if err := s.check(v); err != nil {
				return nil, fmt.Errorf("embed text %d: %w", start+j, err)
			}
			result = append(result, v)
		}
		offset = end
	}

	return result, nil
}

func (s *EmbeddingService) check(v search.Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v.IsZero() {
		return fmt.Errorf("%w: empty vector", search.ErrDimensionMismatch)
	}
	if s.dimension == 0 {
		s.dimension = v.Dimension()
		return nil
	}
	return v.CheckDimension(s.dimension)
}
