package driving

import (
	"context"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
)

// PipelineService exposes the two pipeline phases to external actors.
type PipelineService interface {
	// Index loads, chunks, embeds and indexes the given source paths.
	// It returns a summary of what was indexed.
	Index(ctx context.Context, paths []string) (domain.IndexReport, error)

	// Ask runs the query phase for one question: retrieve, augment,
	// generate, grade. Pipeline-level failures are carried inside the
	// QueryResult; the error return is reserved for context cancellation.
	Ask(ctx context.Context, question string) (domain.QueryResult, error)
}
