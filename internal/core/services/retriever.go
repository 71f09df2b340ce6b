package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
	"github.com/custodia-labs/veridoc-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veridoc-cli/internal/logger"
)

// Retriever wraps the vector index with the retrieval policy: embed the
// question once, then take the top k by cosine similarity.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	k        int
}

// NewRetriever creates a retriever with a default k set at construction.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex, k int) (*Retriever, error) {
	if err := (domain.RetrievalSettings{K: k}).Validate(); err != nil {
		return nil, err
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		k:        k,
	}, nil
}

// K returns the default retrieval depth.
func (r *Retriever) K() int {
	return r.k
}

// Retrieve returns the top chunks for the question at the default depth.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]domain.ScoredChunk, error) {
	return r.RetrieveK(ctx, question, r.k)
}

// RetrieveK returns the top k chunks for the question. One embedding call
// per invocation; k falls back to the construction default when not
// positive.
func (r *Retriever) RetrieveK(ctx context.Context, question string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = r.k
	}

	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	results, err := r.index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	logger.Debug("Retrieved %d/%d chunks for question", len(results), k)
	return results, nil
}
