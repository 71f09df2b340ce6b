// Package loaders assembles the default document loader set.
// The pipeline asks each loader in order whether it supports a path and
// uses the first match.
package loaders

import (
	"github.com/custodia-labs/veridoc-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veridoc-cli/internal/loaders/markdown"
	"github.com/custodia-labs/veridoc-cli/internal/loaders/pdf"
	"github.com/custodia-labs/veridoc-cli/internal/loaders/plaintext"
)

// Default returns the built-in loaders: plain text, Markdown and PDF.
func Default() []driven.DocumentLoader {
	return []driven.DocumentLoader{
		plaintext.New(),
		markdown.New(),
		pdf.New(),
	}
}
