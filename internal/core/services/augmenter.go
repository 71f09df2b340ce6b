package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
)

// Named placeholders a valid answer template must contain.
const (
	PlaceholderContext  = "{context}"
	PlaceholderQuestion = "{question}"
)

// RefusalAnswer is the fixed string the answer template mandates when the
// context does not contain the answer. Callers can match on it to detect
// refusals.
const RefusalAnswer = "Sorry, answer not found in the context provided"

// DefaultAnswerTemplate is the built-in answer-generation template,
// version 1. Changing it is a content decision tracked through the prompt
// store, not a code change.
const DefaultAnswerTemplate = `You are an assistant that answers questions strictly from the provided context.

Context:
{context}

Question: {question}

Answer using only the context above, in at most five sentences.
If the context does not contain the answer, reply exactly:
"` + RefusalAnswer + `"`

// PromptTemplate renders retrieved context and a question into the final
// generation prompt. The template is validated once at construction.
type PromptTemplate struct {
	text string
}

// NewPromptTemplate validates that the template carries both named
// placeholders. A template missing either fails with
// domain.ErrInvalidConfiguration before any model call can happen.
func NewPromptTemplate(text string) (PromptTemplate, error) {
	if !strings.Contains(text, PlaceholderContext) {
		return PromptTemplate{}, fmt.Errorf("%w: prompt template missing %s placeholder",
			domain.ErrInvalidConfiguration, PlaceholderContext)
	}
	if !strings.Contains(text, PlaceholderQuestion) {
		return PromptTemplate{}, fmt.Errorf("%w: prompt template missing %s placeholder",
			domain.ErrInvalidConfiguration, PlaceholderQuestion)
	}
	return PromptTemplate{text: text}, nil
}

// MustPromptTemplate is for the built-in templates known valid at compile time.
func MustPromptTemplate(text string) PromptTemplate {
	t, err := NewPromptTemplate(text)
	if err != nil {
		panic(err)
	}
	return t
}

// Render substitutes the retrieved chunks and the question into the
// template. Chunk texts are joined in retrieval order, separated by a
// blank line. Deterministic for identical input.
func (t PromptTemplate) Render(context []domain.ScoredChunk, question string) string {
	texts := make([]string, len(context))
	for i, sc := range context {
		texts[i] = sc.Chunk.Text
	}

	out := strings.ReplaceAll(t.text, PlaceholderContext, strings.Join(texts, "\n\n"))
	return strings.ReplaceAll(out, PlaceholderQuestion, question)
}

// String returns the raw template text.
func (t PromptTemplate) String() string {
	return t.text
}
