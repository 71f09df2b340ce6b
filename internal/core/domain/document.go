package domain

// Document is an ordered sequence of pages loaded from a single source.
// It is immutable once loaded and identified by its source path.
type Document struct {
	// Source is the path the document was loaded from.
	Source string

	// Pages holds the page-level text in reading order.
	Pages []Page
}

// Page is the unit of text produced by a document loader.
// Pages are immutable after loading.
type Page struct {
	// SourceDocument is the source path of the owning document.
	SourceDocument string

	// Number is the 1-based page number within the document.
	Number int

	// Text is the extracted page text.
	Text string
}

// Chunk is a contiguous window of one page's text, carrying provenance
// back to the page it was cut from. Chunks are immutable once produced.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// SourceDocument is the source path of the originating document.
	SourceDocument string

	// PageNumber is the 1-based page the chunk was cut from.
	PageNumber int

	// Index is the ordinal position of the chunk within its document.
	// It increases monotonically across pages.
	Index int

	// StartOffset and EndOffset are rune offsets into the original page
	// text such that the chunk text equals page[StartOffset:EndOffset].
	StartOffset int
	EndOffset   int

	// Text is the chunk content.
	Text string
}

// IndexRecord pairs a chunk with its embedding vector. Records are created
// at index-build time and never mutated; the vector index owns them for
// its lifetime.
type IndexRecord struct {
	// Vector is the L2-normalised embedding of the chunk text.
	Vector []float32

	// Chunk is the embedded chunk.
	Chunk Chunk
}

// IndexReport summarises one build-phase run.
type IndexReport struct {
	// Documents is the number of source documents indexed.
	Documents int

	// Pages is the number of pages read.
	Pages int

	// Chunks is the number of chunks embedded and added to the index.
	Chunks int

	// Dimensions is the embedding dimension the index was built with.
	Dimensions int
}

// ScoredChunk is a single retrieval hit.
type ScoredChunk struct {
	// Chunk is the retrieved chunk.
	Chunk Chunk

	// Similarity is the cosine similarity to the query vector.
	Similarity float64
}
