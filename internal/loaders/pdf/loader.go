// Package pdf loads PDF files as page-level documents.
package pdf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
	"github.com/custodia-labs/veridoc-cli/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader handles PDF files. Each PDF page becomes one document page, so
// chunk provenance can cite page numbers.
type Loader struct{}

// New creates a new PDF loader.
func New() *Loader {
	return &Loader{}
}

// Supports reports whether the path has a PDF extension.
func (l *Loader) Supports(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Load reads the file and extracts plain text per page. Pages without
// extractable text (scans, pure graphics) are kept as empty pages so
// page numbering stays aligned with the source file.
func (l *Loader) Load(_ context.Context, path string) (domain.Document, error) {
	f, reader, err := ledongthuc.Open(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]domain.Page, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)

		var text string
		if !page.V.IsNull() {
			extracted, err := page.GetPlainText(nil)
			if err != nil {
				return domain.Document{}, fmt.Errorf("extracting text from %s page %d: %w", path, i, err)
			}
			text = extracted
		}

		pages = append(pages, domain.Page{
			SourceDocument: path,
			Number:         i,
			Text:           text,
		})
	}

	return domain.Document{
		Source: path,
		Pages:  pages,
	}, nil
}
