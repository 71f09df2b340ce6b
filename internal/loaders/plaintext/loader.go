// Package plaintext loads plain text files as single-page documents.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
	"github.com/custodia-labs/veridoc-cli/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// supportedExtensions lists the file extensions this loader handles.
var supportedExtensions = map[string]bool{
	".txt":  true,
	".text": true,
	".log":  true,
}

// Loader handles plain text files.
type Loader struct{}

// New creates a new plain text loader.
func New() *Loader {
	return &Loader{}
}

// Supports reports whether the path has a plain text extension.
func (l *Loader) Supports(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Load reads the file as one page. Line endings are normalised to LF so
// chunk offsets are stable across platforms.
func (l *Loader) Load(_ context.Context, path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	return domain.Document{
		Source: path,
		Pages: []domain.Page{{
			SourceDocument: path,
			Number:         1,
			Text:           text,
		}},
	}, nil
}
