package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func axisEntries() []Entry {
	return []Entry{
		NewEntry(1, "Alpha", "Comedy", "", NewVector([]float32{1, 0, 0})),
		NewEntry(2, "Beta", "Drama", "", NewVector([]float32{0, 1, 0})),
		NewEntry(3, "Gamma", "Horror", "", NewVector([]float32{0, 0, 1})),
	}
}

func TestTopK_OrdersByDotProduct(t *testing.T) {
	results := TopK(NewVector([]float32{0.9, 0.1, 0}), axisEntries(), 2)

	require.Len(t, results, 2)
	assert.Equal(t, int64(1), results[0].MovieID())
	assert.InDelta(t, 0.9, results[0].Score(), 1e-6)
	assert.Equal(t, "Alpha", results[0].Title())
	assert.Equal(t, int64(2), results[1].MovieID())
	assert.InDelta(t, 0.1, results[1].Score(), 1e-6)
}

func TestTopK_LimitLargerThanRows(t *testing.T) {
	entries := axisEntries()[:2]
	results := TopK(NewVector([]float32{1, 1, 0}), entries, 10)
	assert.Len(t, results, 2)
}

func TestTopK_TiesBreakOnMovieID(t *testing.T) {
	entries := []Entry{
		NewEntry(9, "Later", "", "", NewVector([]float32{1, 0})),
		NewEntry(4, "Earlier", "", "", NewVector([]float32{1, 0})),
	}
	results := TopK(NewVector([]float32{1, 0}), entries, 2)

	require.Len(t, results, 2)
	assert.Equal(t, int64(4), results[0].MovieID())
	assert.Equal(t, int64(9), results[1].MovieID())
}

func TestTopK_EmptyAndInvalid(t *testing.T) {
	assert.Empty(t, TopK(NewVector([]float32{1}), nil, 5))
	assert.Empty(t, TopK(NewVector([]float32{1, 0, 0}), axisEntries(), 0))
}

func TestTopK_SkipsMismatchedDimensions(t *testing.T) {
	entries := append(axisEntries(), NewEntry(4, "Short", "", "", NewVector([]float32{1})))
	results := TopK(NewVector([]float32{1, 0, 0}), entries, 10)
	assert.Len(t, results, 3)
}

func TestSortResults_NegativeScores(t *testing.T) {
	results := []Result{
		NewResult(1, "a", "", -0.5),
		NewResult(2, "b", "", 0.25),
		NewResult(3, "c", "", -0.1),
	}
	SortResults(results)
	assert.Equal(t, int64(2), results[0].MovieID())
	assert.Equal(t, int64(3), results[1].MovieID())
	assert.Equal(t, int64(1), results[2].MovieID())
}
