// Package chromem provides a vector index backed by the chromem-go
// embedded vector database. It is the library-backed alternative to the
// exact in-memory baseline; recall is equivalent (chromem-go searches
// exhaustively) but equal-score ordering follows the library, not
// insertion order.
package chromem

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
	"github.com/custodia-labs/veridoc-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// collectionName is the single collection all records live in.
const collectionName = "chunks"

// Metadata keys used to round-trip chunk provenance through the store.
const (
	metaSource      = "source_document"
	metaPageNumber  = "page_number"
	metaChunkIndex  = "chunk_index"
	metaStartOffset = "start_offset"
	metaEndOffset   = "end_offset"
)

// Index adapts a chromem-go collection to the vector index port. Chunk
// provenance rides in document metadata and is rebuilt on query.
type Index struct {
	mu         sync.Mutex
	db         *chromemgo.DB
	collection *chromemgo.Collection
	dims       int
	seq        int
}

// New creates an empty chromem-backed index.
func New() (*Index, error) {
	db := chromemgo.NewDB()
	// Embeddings are computed upstream and passed in, so no embedding
	// function is registered on the collection.
	collection, err := db.CreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}
	return &Index{db: db, collection: collection}, nil
}

// Add appends records to the collection. The first record fixes the
// dimension; mismatches fail with domain.ErrDimensionMismatch before
// anything is written.
func (idx *Index) Add(ctx context.Context, records []domain.IndexRecord) error {
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
	for i, r := range records {
		if len(r.Vector) != dims {
			return fmt.Errorf("%w: record %d has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, i, len(r.Vector), dims)
		}
	}

	for _, r := range records {
		doc := chromemgo.Document{
			// The sequence number keys duplicates apart; chunk IDs may
			// repeat when the same record is added twice.
			ID:        fmt.Sprintf("%06d-%s", idx.seq, r.Chunk.ID),
			Content:   r.Chunk.Text,
			Embedding: r.Vector,
			Metadata: map[string]string{
				metaSource:      r.Chunk.SourceDocument,
				metaPageNumber:  strconv.Itoa(r.Chunk.PageNumber),
				metaChunkIndex:  strconv.Itoa(r.Chunk.Index),
				metaStartOffset: strconv.Itoa(r.Chunk.StartOffset),
				metaEndOffset:   strconv.Itoa(r.Chunk.EndOffset),
			},
		}
		if err := idx.collection.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("adding document: %w", err)
		}
		idx.seq++
	}

	idx.dims = dims
	return nil
}

// Search returns up to k chunks nearest to the query vector. k is
// clamped to the collection size; an empty collection returns an empty
// result and no error.
func (idx *Index) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	idx.mu.Lock()
	count := idx.collection.Count()
	dims := idx.dims
	idx.mu.Unlock()

	if count == 0 || k <= 0 {
		return []domain.ScoredChunk{}, nil
	}
	if len(query) != dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), dims)
	}
	if k > count {
		k = count
	}

	results, err := idx.collection.QueryEmbedding(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	out := make([]domain.ScoredChunk, len(results))
	for i, res := range results {
		out[i] = domain.ScoredChunk{
			Chunk:      chunkFromResult(res),
			Similarity: float64(res.Similarity),
		}
	}
	return out, nil
}

// Len returns the number of stored records.
func (idx *Index) Len() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.collection.Count()
}

// Close releases resources.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.db.DeleteCollection(collectionName)
}

func chunkFromResult(res chromemgo.Result) domain.Chunk {
	// Undo the sequence prefix added in Add; the chunk ID follows the
	// first separator.
	id := res.ID
	if i := strings.IndexByte(id, '-'); i >= 0 {
		id = id[i+1:]
	}

	pageNumber, _ := strconv.Atoi(res.Metadata[metaPageNumber])
	chunkIndex, _ := strconv.Atoi(res.Metadata[metaChunkIndex])
	startOffset, _ := strconv.Atoi(res.Metadata[metaStartOffset])
	endOffset, _ := strconv.Atoi(res.Metadata[metaEndOffset])

	return domain.Chunk{
		ID:             id,
		SourceDocument: res.Metadata[metaSource],
		PageNumber:     pageNumber,
		Index:          chunkIndex,
		StartOffset:    startOffset,
		EndOffset:      endOffset,
		Text:           res.Content,
	}
}
