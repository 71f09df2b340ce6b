// Package chunker splits page-level documents into overlapping text
// windows with stable ordering and provenance offsets.
package chunker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
)

// DefaultChunkSize is the default maximum chunk length in runes.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default overlap between consecutive chunks in runes.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// separators is the break-point priority list: paragraph break, line
// break, sentence end, word boundary. The empty string (hard cut) is the
// implicit last resort.
var separators = []string{"\n\n", "\n", ". ", " "}

// Processor splits documents into chunks of at most chunkSize runes.
// Consecutive chunks of one page overlap by exactly overlap runes: the
// next chunk starts overlap runes before the previous chunk's end, so
// concatenating chunk texts and dropping each successor's first overlap
// runes reconstructs the page exactly.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the maximum chunk size in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a chunker processor with the given options.
// Returns domain.ErrInvalidConfiguration if the resulting size/overlap
// pair violates 0 < size and 0 <= overlap < size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	settings := domain.ChunkingSettings{ChunkSize: p.chunkSize, ChunkOverlap: p.overlap}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured maximum chunk length in runes.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap in runes.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Split chunks every page of the document independently and returns the
// chunks in page order with a monotonically increasing index across the
// document. Deterministic for identical input; empty pages produce no
// chunks.
func (p *Processor) Split(doc domain.Document) ([]domain.Chunk, error) {
	if doc.Source == "" {
		return nil, fmt.Errorf("%w: document has no source path", domain.ErrInvalidConfiguration)
	}

	var chunks []domain.Chunk
	index := 0

	for _, page := range doc.Pages {
		for _, span := range p.splitPage(page.Text) {
			chunks = append(chunks, domain.Chunk{
				ID:             uuid.New().String(),
				SourceDocument: doc.Source,
				PageNumber:     page.Number,
				Index:          index,
				StartOffset:    span.start,
				EndOffset:      span.end,
				Text:           span.text,
			})
			index++
		}
	}

	return chunks, nil
}

type span struct {
	start int
	end   int
	text  string
}

// splitPage windows one page's text. Offsets are rune offsets into the
// page. Each window ends at the best available separator within the size
// limit; the next window starts overlap runes earlier than that end.
func (p *Processor) splitPage(text string) []span {
	runes := []rune(text)
	total := len(runes)
	if total == 0 {
		return nil
	}

	spans := make([]span, 0, total/(p.chunkSize-p.overlap)+1)
	start := 0

	for {
		limit := start + p.chunkSize
		if limit >= total {
			spans = append(spans, span{start: start, end: total, text: string(runes[start:total])})
			return spans
		}

		end := p.breakPoint(runes, start, limit)
		spans = append(spans, span{start: start, end: end, text: string(runes[start:end])})
		start = end - p.overlap
	}
}

// breakPoint chooses where the window starting at start should end. It
// tries each separator in priority order and takes the latest occurrence
// that keeps the chunk within the size limit while still advancing past
// the overlap region; if no separator fits, it hard-cuts at the limit.
func (p *Processor) breakPoint(runes []rune, start, limit int) int {
	// A break at or before start+overlap would make the next chunk start
	// at or before this one, so the searched window is (minEnd-1, limit].
	minEnd := start + p.overlap + 1

	window := string(runes[start:limit])
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		for idx >= 0 {
			end := start + len([]rune(window[:idx])) + len([]rune(sep))
			if end >= minEnd {
				return end
			}
			idx = strings.LastIndex(window[:idx], sep)
		}
	}

	return limit
}
