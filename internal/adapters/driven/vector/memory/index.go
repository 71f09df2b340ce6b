// Package memory provides an exact in-memory vector index.
// Brute-force inner-product search is the correctness baseline: for the
// target corpus sizes (tens of thousands of records) a linear scan is
// fast enough that no approximate structure is warranted.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
	"github.com/custodia-labs/veridoc-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores records in insertion order and answers top-k queries by
// scanning all of them. Vectors are expected unit-norm, so the inner
// product is cosine similarity. Add and Search are safe under a
// readers-writer discipline: a search observes either the pre- or
// post-insertion state of a bulk Add, never a partial one.
type Index struct {
	mu      sync.RWMutex
	dims    int
	records []domain.IndexRecord
}

// New creates an empty index. The first Add establishes the dimension.
func New() *Index {
	return &Index{}
}

// Add appends records to the index. Every vector must match the
// dimension fixed by the first record ever inserted; a mismatch fails
// with domain.ErrDimensionMismatch and inserts nothing. Duplicate
// records are appended as-is, the index never deduplicates.
func (idx *Index) Add(_ context.Context, records []domain.IndexRecord) error {
	if len(records) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	dims := idx.dims
	if dims == 0 {
		dims = len(records[0].Vector)
		if dims == 0 {
			return fmt.Errorf("%w: empty vector", domain.ErrDimensionMismatch)
		}
	}

	// Validate the whole batch before touching the slice, so a failed
	// Add leaves the index unchanged.
	for i, r := range records {
		if len(r.Vector) != dims {
			return fmt.Errorf("%w: record %d has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, i, len(r.Vector), dims)
		}
		for _, v := range r.Vector {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return fmt.Errorf("%w: record %d has a non-finite component",
					domain.ErrDimensionMismatch, i)
			}
		}
	}

	idx.dims = dims
	idx.records = append(idx.records, records...)
	return nil
}

// Search returns up to k records nearest to the query vector by inner
// product, descending. Ties rank by insertion order. k larger than the
// index is clamped; an empty index returns an empty result, never an
// error.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.records) == 0 {
		return []domain.ScoredChunk{}, nil
	}
	if len(query) != idx.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), idx.dims)
	}
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}
	if k > len(idx.records) {
		k = len(idx.records)
	}

	type hit struct {
		pos   int
		score float64
	}
	hits := make([]hit, len(idx.records))
	for i, r := range idx.records {
		hits[i] = hit{pos: i, score: dot(query, r.Vector)}
	}

	// Stable sort preserves insertion order for equal scores.
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].score > hits[b].score
	})

	results := make([]domain.ScoredChunk, k)
	for i, h := range hits[:k] {
		results[i] = domain.ScoredChunk{
			Chunk:      idx.records[h.pos].Chunk,
			Similarity: h.score,
		}
	}
	return results, nil
}

// Len returns the number of stored records.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records)
}

// Close releases resources.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.records = nil
	idx.dims = 0
	return nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
