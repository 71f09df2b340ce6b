package memory

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
)

func record(text string, vector ...float32) domain.IndexRecord {
	return domain.IndexRecord{
		Vector: vector,
		Chunk:  domain.Chunk{Text: text, SourceDocument: "/corpus/doc.txt", PageNumber: 1},
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	idx := New()

	results, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, idx.Len())
}

func TestAddEstablishesDimension(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []domain.IndexRecord{record("a", 1, 0, 0)}))

	err := idx.Add(ctx, []domain.IndexRecord{record("b", 1, 0)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 1, idx.Len(), "failed add must not insert")
}

func TestAddRejectsMixedBatchAtomically(t *testing.T) {
	idx := New()

	err := idx.Add(context.Background(), []domain.IndexRecord{
		record("ok", 1, 0),
		record("bad", 1, 0, 0),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 0, idx.Len())
}

func TestAddRejectsNonFiniteVectors(t *testing.T) {
	idx := New()

	err := idx.Add(context.Background(), []domain.IndexRecord{
		record("nan", float32(math.NaN()), 0),
	})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestSearchRanksByInnerProduct(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []domain.IndexRecord{
		record("east", 1, 0),
		record("north", 0, 1),
		record("northeast", 0.7071, 0.7071),
	}))

	results, err := idx.Search(ctx, []float32{0, 1}, 3)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "north", results[0].Chunk.Text)
	assert.Equal(t, "northeast", results[1].Chunk.Text)
	assert.Equal(t, "east", results[2].Chunk.Text)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Similarity, results[i-1].Similarity)
	}
}

func TestSearchTieBreaksByInsertionOrder(t *testing.T) {
	idx := New()
	ctx := context.Background()

	// Identical vectors, identical scores.
	require.NoError(t, idx.Add(ctx, []domain.IndexRecord{
		record("first", 1, 0),
		record("second", 1, 0),
		record("third", 1, 0),
	}))

	results, err := idx.Search(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Chunk.Text)
	assert.Equal(t, "second", results[1].Chunk.Text)
	assert.Equal(t, "third", results[2].Chunk.Text)
}

func TestSearchClampsK(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []domain.IndexRecord{
		record("a", 1, 0),
		record("b", 0, 1),
	}))

	results, err := idx.Search(ctx, []float32{1, 0}, 50)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = idx.Search(ctx, []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRejectsMismatchedQuery(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []domain.IndexRecord{record("a", 1, 0, 0)}))

	_, err := idx.Search(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

// Duplicate adds are kept and ranked; no dedup is claimed.
func TestAddDuplicatesKept(t *testing.T) {
	idx := New()
	ctx := context.Background()

	batch := []domain.IndexRecord{record("dup", 1, 0)}
	require.NoError(t, idx.Add(ctx, batch))
	require.NoError(t, idx.Add(ctx, batch))

	assert.Equal(t, 2, idx.Len())

	results, err := idx.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, results[0].Similarity, results[1].Similarity)
}

func TestCloseResetsIndex(t *testing.T) {
	idx := New()
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []domain.IndexRecord{record("a", 1, 0)}))
	require.NoError(t, idx.Close())
	assert.Equal(t, 0, idx.Len())

	// A closed index can be refilled with a new dimension.
	require.NoError(t, idx.Add(ctx, []domain.IndexRecord{record("b", 1, 0, 0)}))
	assert.Equal(t, 1, idx.Len())
}

func TestConcurrentAddAndSearch(t *testing.T) {
	idx := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = idx.Add(ctx, []domain.IndexRecord{record("w", 1, 0)})
		}()
		go func() {
			defer wg.Done()
			_, _ = idx.Search(ctx, []float32{1, 0}, 3)
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, idx.Len())
}
