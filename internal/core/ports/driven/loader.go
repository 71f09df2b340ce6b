package driven

import (
	"context"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
)

// DocumentLoader reads a source file into a page-level Document.
// Loaders are format-specific; a registry of loaders picks the first one
// whose Supports reports true for the path.
type DocumentLoader interface {
	// Load reads the file at path and returns its pages in reading order.
	Load(ctx context.Context, path string) (domain.Document, error)

	// Supports reports whether this loader handles the given path.
	Supports(path string) bool
}
