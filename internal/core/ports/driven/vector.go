package driven

import (
	"context"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
)

// VectorIndex stores embedded chunks and answers top-k similarity queries.
//
// The first Add establishes the index dimension; any later vector with a
// different dimension is rejected with domain.ErrDimensionMismatch.
// Vectors are L2-normalised by the embedding adapters, so similarity is
// the inner product. Equal scores rank by insertion order, and the index
// never deduplicates: adding the same record twice yields two entries.
type VectorIndex interface {
	// Add appends records to the index.
	Add(ctx context.Context, records []domain.IndexRecord) error

	// Search returns up to k chunks nearest to the query vector, in
	// descending similarity order. k larger than the index size is
	// clamped; an empty index returns an empty result and no error.
	Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error)

	// Len returns the number of records in the index.
	Len() int

	// Close releases resources.
	Close() error
}
