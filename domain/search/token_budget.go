package search

import (
	"fmt"
	"unicode/utf8"
)

// TokenBudget constrains embedding batches to stay within model token limits.
// It holds a character budget and a maximum batch size: each batch's total
// (truncated) text must not exceed maxChars, each batch contains at most
// maxBatchSize texts, and individual texts are truncated to maxChars.
type TokenBudget struct {
	maxChars     int
	maxBatchSize int
}

// NewTokenBudget creates a TokenBudget with the given character limit.
// maxChars must be positive.
func NewTokenBudget(maxChars int) (TokenBudget, error) {
	if maxChars <= 0 {
		return TokenBudget{}, fmt.Errorf("NewTokenBudget: maxChars must be positive, got %d", maxChars)
	}
	return TokenBudget{maxChars: maxChars, maxBatchSize: 1}, nil
}

// DefaultTokenBudget returns a budget of 16 000 characters per batch and at
// most 10 texts per batch, which fits both the local model's batch capacity
// and 8 192-token remote models like text-embedding-3-small.
func DefaultTokenBudget() TokenBudget {
	b, _ := NewTokenBudget(16000)
	return b.WithMaxBatchSize(10)
}

// WithMaxBatchSize returns a new TokenBudget with the given maximum number
// of texts per batch. Values <= 0 are clamped to 1.
func (b TokenBudget) WithMaxBatchSize(n int) TokenBudget {
	if n <= 0 {
		n = 1
	}
	b.maxBatchSize = n
	return b
}

// MaxChars returns the per-batch character limit.
func (b TokenBudget) MaxChars() int { return b.maxChars }

// MaxBatchSize returns the per-batch text limit.
func (b TokenBudget) MaxBatchSize() int { return b.maxBatchSize }

// Truncate returns text capped to the character (rune) limit.
func (b TokenBudget) Truncate(text string) string {
	if utf8.RuneCountInString(text) <= b.maxChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:b.maxChars])
}

// Batches partitions texts into contiguous groups whose total truncated
// character count stays within the budget and whose size does not exceed
// maxBatchSize. A single text whose truncated length still exceeds the
// character budget is placed alone in its own batch.
func (b TokenBudget) Batches(texts []string) [][]string {
	if len(texts) == 0 {
		return nil
	}

	var batches [][]string
	i := 0

	for i < len(texts) {
		start := i
		batchChars := 0

		for i < len(texts) {
			if i-start >= b.maxBatchSize && i > start {
				break
			}

			textLen := min(utf8.RuneCountInString(texts[i]), b.maxChars)

			if batchChars+textLen > b.maxChars && i > start {
				break
			}

			batchChars += textLen
			i++
		}

		batch := make([]string, i-start)
		for j, text := range texts[start:i] {
			batch[j] = b.Truncate(text)
		}
		batches = append(batches, batch)
	}

	return batches
}
