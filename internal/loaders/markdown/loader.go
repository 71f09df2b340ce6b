// Package markdown loads Markdown files as single-page documents with
// formatting stripped, so chunk text reads as prose rather than markup.
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
	"github.com/custodia-labs/veridoc-cli/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// supportedExtensions lists the file extensions this loader handles.
var supportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdown":    true,
}

// multiNewlines collapses runs of blank lines left by stripped markup.
var multiNewlines = regexp.MustCompile(`\n{3,}`)

// Loader handles Markdown files.
type Loader struct {
	md goldmark.Markdown
}

// New creates a new Markdown loader.
func New() *Loader {
	return &Loader{md: goldmark.New()}
}

// Supports reports whether the path has a Markdown extension.
func (l *Loader) Supports(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Load parses the file and extracts its text content as one page.
func (l *Loader) Load(_ context.Context, path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}

	text, err := l.extractText(data)
	if err != nil {
		return domain.Document{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	return domain.Document{
		Source: path,
		Pages: []domain.Page{{
			SourceDocument: path,
			Number:         1,
			Text:           text,
		}},
	}, nil
}

// extractText walks the parsed AST and collects text content, keeping
// paragraph boundaries as blank lines and dropping markup.
func (l *Loader) extractText(source []byte) (string, error) {
	root := l.md.Parser().Parse(gmtext.NewReader(source))

	var b strings.Builder
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteByte('\n')
				}
			}

		case *ast.FencedCodeBlock:
			if entering {
				writeLines(&b, source, node)
			} else {
				b.WriteString("\n\n")
			}

		case *ast.CodeBlock:
			if entering {
				writeLines(&b, source, node)
			} else {
				b.WriteString("\n\n")
			}

		case *ast.AutoLink:
			if entering {
				b.Write(node.URL(source))
			}

		default:
			if !entering && n.Type() == ast.TypeBlock {
				b.WriteString("\n\n")
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}

	text := multiNewlines.ReplaceAllString(b.String(), "\n\n")
	return strings.TrimSpace(text), nil
}

// writeLines copies a block node's raw source lines.
func writeLines(b *strings.Builder, source []byte, n ast.Node) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
}
