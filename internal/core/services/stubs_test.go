package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
	"github.com/custodia-labs/veridoc-cli/internal/core/ports/driven"
)

// stubEmbedder returns pre-seeded vectors by exact text match and a
// shared fallback vector for everything else. Deterministic.
type stubEmbedder struct {
	dims       int
	vectors    map[string][]float32
	fallback   []float32
	embedCalls int
	batchCalls int
	err        error
}

var _ driven.EmbeddingService = (*stubEmbedder)(nil)

func newStubEmbedder(dims int) *stubEmbedder {
	fallback := make([]float32, dims)
	fallback[0] = 1
	return &stubEmbedder{
		dims:     dims,
		vectors:  make(map[string][]float32),
		fallback: fallback,
	}
}

func (s *stubEmbedder) seed(text string, vector []float32) {
	s.vectors[text] = vector
}

func (s *stubEmbedder) lookup(text string) []float32 {
	if v, ok := s.vectors[text]; ok {
		return v
	}
	return s.fallback
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.embedCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.lookup(text), nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.batchCalls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.lookup(t)
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int              { return s.dims }
func (s *stubEmbedder) ModelName() string            { return "stub-embedder" }
func (s *stubEmbedder) Ping(_ context.Context) error { return nil }
func (s *stubEmbedder) Close() error                 { return nil }

// stubIndex is a minimal exact index for service tests: brute-force inner
// product with insertion-order tie-break.
type stubIndex struct {
	records []domain.IndexRecord
	err     error
}

var _ driven.VectorIndex = (*stubIndex)(nil)

func (s *stubIndex) Add(_ context.Context, records []domain.IndexRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, records...)
	return nil
}

func (s *stubIndex) Search(_ context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	if s.err != nil {
		return nil, s.err
	}
	type hit struct {
		pos   int
		score float64
	}
	hits := make([]hit, len(s.records))
	for i, r := range s.records {
		var dot float64
		for d := range query {
			dot += float64(query[d]) * float64(r.Vector[d])
		}
		hits[i] = hit{pos: i, score: dot}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })

	if k > len(hits) {
		k = len(hits)
	}
	out := make([]domain.ScoredChunk, 0, k)
	for _, h := range hits[:k] {
		out = append(out, domain.ScoredChunk{Chunk: s.records[h.pos].Chunk, Similarity: h.score})
	}
	return out, nil
}

func (s *stubIndex) Len() int     { return len(s.records) }
func (s *stubIndex) Close() error { return nil }

// stubLLM answers Generate and Chat from a function, so each test wires
// exactly the behaviour it asserts on.
type stubLLM struct {
	generate      func(prompt string, opts driven.GenerateOptions) (string, error)
	chat          func(messages []driven.ChatMessage, opts driven.GenerateOptions) (string, error)
	generateCalls int
	chatCalls     int
}

var _ driven.LLMService = (*stubLLM)(nil)

func (s *stubLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	s.generateCalls++
	if s.generate == nil {
		return "", fmt.Errorf("stub generate not wired")
	}
	return s.generate(prompt, opts)
}

func (s *stubLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.GenerateOptions) (string, error) {
	s.chatCalls++
	if s.chat == nil {
		return "", fmt.Errorf("stub chat not wired")
	}
	return s.chat(messages, opts)
}

func (s *stubLLM) ModelName() string            { return "stub-llm" }
func (s *stubLLM) Ping(_ context.Context) error { return nil }
func (s *stubLLM) Close() error                 { return nil }

// entityGraderLLM grades deterministically: the answer is grounded unless
// it mentions an entity absent from the facts.
func entityGraderLLM(unsupported string) *stubLLM {
	return &stubLLM{
		chat: func(messages []driven.ChatMessage, _ driven.GenerateOptions) (string, error) {
			user := messages[len(messages)-1].Content
			facts, answer := splitGradeMessage(user)
			if strings.Contains(answer, unsupported) && !strings.Contains(facts, unsupported) {
				return `{"binary_score": "no", "explanation": "mentions ` + unsupported + ` which is not in the facts"}`, nil
			}
			return `{"binary_score": "yes", "explanation": "all claims supported by the facts"}`, nil
		},
	}
}

func splitGradeMessage(user string) (facts, answer string) {
	parts := strings.SplitN(user, "STUDENT ANSWER:", 2)
	if len(parts) != 2 {
		return user, ""
	}
	return strings.TrimPrefix(parts[0], "FACTS:"), parts[1]
}

// stubRecordStore keeps persisted records in memory.
type stubRecordStore struct {
	saved []domain.IndexRecord
}

var _ driven.RecordStore = (*stubRecordStore)(nil)

func (s *stubRecordStore) SaveRecords(_ context.Context, records []domain.IndexRecord) error {
	s.saved = append(s.saved, records...)
	return nil
}

func (s *stubRecordStore) LoadRecords(_ context.Context) ([]domain.IndexRecord, error) {
	return s.saved, nil
}

func (s *stubRecordStore) DeleteBySource(_ context.Context, source string) error {
	kept := s.saved[:0]
	for _, r := range s.saved {
		if r.Chunk.SourceDocument != source {
			kept = append(kept, r)
		}
	}
	s.saved = kept
	return nil
}

func (s *stubRecordStore) Count(_ context.Context) (int, error) {
	return len(s.saved), nil
}

func (s *stubRecordStore) Close() error { return nil }

// stubLoader serves fixed documents by path.
type stubLoader struct {
	docs map[string]domain.Document
}

var _ driven.DocumentLoader = (*stubLoader)(nil)

func (s *stubLoader) Load(_ context.Context, path string) (domain.Document, error) {
	doc, ok := s.docs[path]
	if !ok {
		return domain.Document{}, fmt.Errorf("stub loader: no document for %s", path)
	}
	return doc, nil
}

func (s *stubLoader) Supports(path string) bool {
	_, ok := s.docs[path]
	return ok
}
