// Package performance_test measures ranking over a realistic number of movie
// vectors and checks the database ranking against the in-memory one.
package performance_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/moviesearch/domain/search"
	vectorstore "github.com/helixml/moviesearch/infrastructure/search"
	"github.com/helixml/moviesearch/internal/testdb"
)

const (
	movieCount = 10000
	dimension  = 384
	queries    = 20
	topK       = 10
)

func randomVector(rng *rand.Rand) search.Vector {
	values := make([]float32, dimension)
	for i := range values {
		values[i] = rng.Float32()*2 - 1
	}
	return search.NewVector(values)
}

func TestRanking_SQLiteMatchesInMemory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping ranking performance test in short mode")
	}

	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	entries := make([]search.Entry, movieCount)
	for i := range entries {
		id := int64(i + 1)
		entries[i] = search.NewEntry(id, fmt.Sprintf("Movie %d (2000)", id), "Drama", "", randomVector(rng))
	}

	store := vectorstore.NewSQLiteVectorStore(testdb.NewPlain(t), dimension, nil)
	require.NoError(t, store.Reset(ctx))

	start := time.Now()
	for i := 0; i < len(entries); i += 1000 {
		require.NoError(t, store.SaveAll(ctx, entries[i:min(i+1000, len(entries))]))
	}
	t.Logf("stored %d vectors of dimension %d in %s", movieCount, dimension, time.Since(start))

	var sqlTotal, memTotal time.Duration
	for q := range queries {
		query := randomVector(rng)

		start = time.Now()
		got, err := store.Search(ctx, query, topK)
		require.NoError(t, err)
		sqlTotal += time.Since(start)

		start = time.Now()
		want := search.TopK(query, entries, topK)
		memTotal += time.Since(start)

		require.Len(t, got, topK, "query %d", q)
		for i := range want {
			assert.Equal(t, want[i].MovieID(), got[i].MovieID(), "query %d rank %d", q, i)
			assert.InDelta(t, want[i].Score(), got[i].Score(), 1e-6, "query %d rank %d", q, i)
		}
	}

	t.Logf("DOT_PRODUCT ranking: %s per query", sqlTotal/queries)
	t.Logf("in-memory ranking:   %s per query", memTotal/queries)
}
