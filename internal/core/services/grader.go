package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
	"github.com/custodia-labs/veridoc-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veridoc-cli/internal/logger"
)

// DefaultGradeSystemPrompt is the built-in grading rubric, version 1.
const DefaultGradeSystemPrompt = `You are a grader assessing whether an answer is grounded in a set of facts.
Give a binary score: "yes" means every claim in the answer is supported by the facts,
"no" means the answer contains information outside the facts.
Respond with a JSON object containing exactly two fields:
"binary_score" ("yes" or "no") and "explanation" (your reasoning).`

// DefaultGradeUserTemplate is the built-in grading user message, version 1.
// {facts} receives the retrieved context, {answer} the generation.
const DefaultGradeUserTemplate = `FACTS:
{facts}

STUDENT ANSWER:
{answer}`

// Grading template placeholders.
const (
	placeholderFacts  = "{facts}"
	placeholderAnswer = "{answer}"
)

// Grader judges whether a generation is grounded in retrieved context by
// asking a grading model for a structured verdict. The grader is a
// heuristic oracle: its verdict is advisory metadata, not a gate.
type Grader struct {
	llm          driven.LLMService
	systemPrompt string
	userTemplate string
}

// NewGrader creates a grader over the given grading model.
func NewGrader(llm driven.LLMService) *Grader {
	return &Grader{
		llm:          llm,
		systemPrompt: DefaultGradeSystemPrompt,
		userTemplate: DefaultGradeUserTemplate,
	}
}

// SetPrompts overrides the built-in rubric and user template, typically
// from a PromptStore. The user template must keep both placeholders.
func (g *Grader) SetPrompts(system, user string) error {
	if system == "" || user == "" {
		return fmt.Errorf("%w: grading prompts must not be empty", domain.ErrInvalidConfiguration)
	}
	if !strings.Contains(user, placeholderFacts) || !strings.Contains(user, placeholderAnswer) {
		return fmt.Errorf("%w: grading template missing %s or %s placeholder",
			domain.ErrInvalidConfiguration, placeholderFacts, placeholderAnswer)
	}
	g.systemPrompt = system
	g.userTemplate = user
	return nil
}

// Grade asks the grading model whether the generation is supported by the
// context and parses the structured verdict. A response that does not
// parse as a valid verdict fails with domain.ErrUngroundedResponseFormat;
// it is never coerced into a "no" score.
func (g *Grader) Grade(ctx context.Context, contextText, generation string) (domain.GradingVerdict, error) {
	user := strings.ReplaceAll(g.userTemplate, placeholderFacts, contextText)
	user = strings.ReplaceAll(user, placeholderAnswer, generation)

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: g.systemPrompt},
		{Role: driven.RoleUser, Content: user},
	}

	raw, err := g.llm.Chat(ctx, messages, driven.GenerateOptions{
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		return domain.GradingVerdict{}, fmt.Errorf("grading call: %w", err)
	}

	verdict, err := parseVerdict(raw)
	if err != nil {
		logger.Warn("Grading model returned unparsable verdict: %v", err)
		return domain.GradingVerdict{}, err
	}

	logger.Debug("Grounding verdict: %s", verdict.BinaryScore)
	return verdict, nil
}

// parseVerdict decodes the model output into a GradingVerdict. Exactly
// the two contract fields are accepted; anything else is a format error.
func parseVerdict(raw string) (domain.GradingVerdict, error) {
	payload := extractJSONObject(raw)
	if payload == "" {
		return domain.GradingVerdict{}, fmt.Errorf("%w: no JSON object in %q",
			domain.ErrUngroundedResponseFormat, truncate(raw, 120))
	}

	// Pointer fields distinguish a missing key from an empty value.
	var decoded struct {
		BinaryScore *string `json:"binary_score"`
		Explanation *string `json:"explanation"`
	}
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&decoded); err != nil {
		return domain.GradingVerdict{}, fmt.Errorf("%w: %v", domain.ErrUngroundedResponseFormat, err)
	}
	if decoded.BinaryScore == nil {
		return domain.GradingVerdict{}, fmt.Errorf("%w: missing binary_score field",
			domain.ErrUngroundedResponseFormat)
	}
	if decoded.Explanation == nil {
		return domain.GradingVerdict{}, fmt.Errorf("%w: missing explanation field",
			domain.ErrUngroundedResponseFormat)
	}

	verdict := domain.GradingVerdict{
		BinaryScore: *decoded.BinaryScore,
		Explanation: *decoded.Explanation,
	}
	if err := verdict.Validate(); err != nil {
		return domain.GradingVerdict{}, err
	}
	return verdict, nil
}

// extractJSONObject returns the outermost {...} block in the text. Models
// occasionally wrap JSON in prose or markdown fences even in JSON mode.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
