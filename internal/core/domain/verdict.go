package domain

import (
	"fmt"
	"strings"
)

// Grading scores returned by the grounding grader.
const (
	// GradeGrounded means every claim in the answer is supported by the
	// retrieved context.
	GradeGrounded = "yes"

	// GradeUngrounded means the answer contains claims outside the
	// retrieved context.
	GradeUngrounded = "no"
)

// GradingVerdict is the structured result of one grounding check.
type GradingVerdict struct {
	// BinaryScore is "yes" (grounded) or "no" (ungrounded).
	BinaryScore string `json:"binary_score"`

	// Explanation is the model's free-text reasoning for the score.
	Explanation string `json:"explanation"`
}

// Grounded returns true if the verdict scored the answer as grounded.
func (v GradingVerdict) Grounded() bool {
	return v.BinaryScore == GradeGrounded
}

// Validate checks the verdict against the grading contract. The score
// must be exactly "yes" or "no" after case normalisation; anything else
// is a format violation, never a default verdict.
func (v *GradingVerdict) Validate() error {
	score := strings.ToLower(strings.TrimSpace(v.BinaryScore))
	if score != GradeGrounded && score != GradeUngrounded {
		return fmt.Errorf("%w: binary_score %q not in {yes, no}",
			ErrUngroundedResponseFormat, v.BinaryScore)
	}
	v.BinaryScore = score
	return nil
}

// QueryState is the terminal state of one pipeline query.
type QueryState string

// Terminal query states.
const (
	// QueryStateAnswered means generation completed and an answer was
	// produced (possibly the refusal string).
	QueryStateAnswered QueryState = "answered"

	// QueryStateFailed means the pipeline stopped before producing an
	// answer; Kind and Message describe why.
	QueryStateFailed QueryState = "failed"
)

// IsValid returns true if the state is recognised.
func (s QueryState) IsValid() bool {
	return s == QueryStateAnswered || s == QueryStateFailed
}

// String returns the string representation.
func (s QueryState) String() string {
	return string(s)
}

// QueryResult is the full outcome of one question put to the pipeline.
// Context retrieved before a failure is preserved so callers can inspect
// what the generator would have seen.
type QueryResult struct {
	// Question is the original question text.
	Question string

	// Answer is the generated answer. Empty when State is failed.
	Answer string

	// Context holds the retrieved chunks in descending similarity order.
	Context []ScoredChunk

	// Verdicts holds the grounding verdicts, one per generation attempt.
	// Under the report-only policy this has at most one element.
	Verdicts []GradingVerdict

	// State is the terminal state of the query.
	State QueryState

	// Kind classifies the failure when State is failed, or the grading
	// error when the answer was produced but could not be graded.
	Kind ErrorKind

	// Message is the human-readable failure description.
	Message string
}

// Grounded returns true if the final verdict scored the answer grounded.
func (r QueryResult) Grounded() bool {
	if len(r.Verdicts) == 0 {
		return false
	}
	return r.Verdicts[len(r.Verdicts)-1].Grounded()
}
