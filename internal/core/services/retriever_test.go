package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
)

func seededIndex(t *testing.T, embedder *stubEmbedder, texts ...string) *stubIndex {
	t.Helper()
	index := &stubIndex{}
	records := make([]domain.IndexRecord, len(texts))
	for i, text := range texts {
		records[i] = domain.IndexRecord{
			Vector: embedder.lookup(text),
			Chunk:  domain.Chunk{Index: i, Text: text, SourceDocument: "/corpus/doc.txt", PageNumber: 1},
		}
	}
	require.NoError(t, index.Add(context.Background(), records))
	return index
}

func TestNewRetrieverValidation(t *testing.T) {
	embedder := newStubEmbedder(3)
	index := &stubIndex{}

	_, err := NewRetriever(embedder, index, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	_, err = NewRetriever(embedder, index, -2)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	r, err := NewRetriever(embedder, index, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, r.K())
}

func TestRetrieveRanksBySimilarity(t *testing.T) {
	embedder := newStubEmbedder(3)
	embedder.seed("about cats", []float32{1, 0, 0})
	embedder.seed("about dogs", []float32{0, 1, 0})
	embedder.seed("about fish", []float32{0, 0, 1})
	embedder.seed("tell me about dogs", []float32{0.1, 0.99, 0})

	index := seededIndex(t, embedder, "about cats", "about dogs", "about fish")

	r, err := NewRetriever(embedder, index, 2)
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), "tell me about dogs")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "about dogs", results[0].Chunk.Text)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
}

func TestRetrieveEmbedsQuestionOnce(t *testing.T) {
	embedder := newStubEmbedder(3)
	index := seededIndex(t, embedder, "one", "two")

	r, err := NewRetriever(embedder, index, 5)
	require.NoError(t, err)

	_, err = r.Retrieve(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, 1, embedder.embedCalls)
}

func TestRetrieveKOverride(t *testing.T) {
	embedder := newStubEmbedder(3)
	index := seededIndex(t, embedder, "a", "b", "c", "d")

	r, err := NewRetriever(embedder, index, 2)
	require.NoError(t, err)

	results, err := r.RetrieveK(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	// Non-positive override falls back to the construction default.
	results, err = r.RetrieveK(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRetrieveEmptyIndex(t *testing.T) {
	embedder := newStubEmbedder(3)
	r, err := NewRetriever(embedder, &stubIndex{}, 5)
	require.NoError(t, err)

	results, err := r.Retrieve(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrievePropagatesEmbedderErrors(t *testing.T) {
	embedder := newStubEmbedder(3)
	embedder.err = domain.ErrUpstreamUnavailable

	r, err := NewRetriever(embedder, &stubIndex{}, 5)
	require.NoError(t, err)

	_, err = r.Retrieve(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
