package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
	"github.com/custodia-labs/veridoc-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veridoc-cli/internal/core/ports/driving"
	"github.com/custodia-labs/veridoc-cli/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.PipelineService = (*Pipeline)(nil)

// Splitter turns a document into ordered chunks.
// Implemented by the chunker post-processor.
type Splitter interface {
	Split(doc domain.Document) ([]domain.Chunk, error)
}

// Pipeline sequences the two phases: build (load, chunk, embed, index)
// and query (retrieve, augment, generate, grade). The built vector index
// is the only state shared between the phases.
type Pipeline struct {
	splitter  Splitter
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	generator driven.LLMService
	grader    *Grader
	retriever *Retriever
	template  PromptTemplate
	policy    domain.VerdictPolicy
	genOpts   driven.GenerateOptions

	loaders []driven.DocumentLoader
	records driven.RecordStore
}

// NewPipeline assembles the pipeline from its collaborators. The prompt
// template and verdict policy come from settings; an empty template falls
// back to the built-in one. Configuration violations fail here, before
// any model call.
func NewPipeline(
	splitter Splitter,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	generator driven.LLMService,
	grader *Grader,
	settings domain.AppSettings,
) (*Pipeline, error) {
	if err := settings.Retrieval.Validate(); err != nil {
		return nil, err
	}
	if err := settings.Pipeline.Validate(); err != nil {
		return nil, err
	}

	templateText := settings.Pipeline.PromptTemplate
	if templateText == "" {
		templateText = DefaultAnswerTemplate
	}
	template, err := NewPromptTemplate(templateText)
	if err != nil {
		return nil, err
	}

	retriever, err := NewRetriever(embedder, index, settings.Retrieval.K)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		splitter:  splitter,
		embedder:  embedder,
		index:     index,
		generator: generator,
		grader:    grader,
		retriever: retriever,
		template:  template,
		policy:    settings.Pipeline.VerdictPolicy,
		genOpts: driven.GenerateOptions{
			MaxTokens:   settings.Generation.MaxTokens,
			Temperature: settings.Generation.Temperature,
		},
	}, nil
}

// SetLoaders sets the document loaders tried in order during Index.
func (p *Pipeline) SetLoaders(loaders []driven.DocumentLoader) {
	p.loaders = loaders
}

// SetRecordStore sets the optional store that persists index records.
func (p *Pipeline) SetRecordStore(store driven.RecordStore) {
	p.records = store
}

// Index runs the build phase over the given source paths: load each
// document, chunk it, embed all chunks in one batch and append them to
// the vector index. When a record store is configured the records are
// persisted as well.
func (p *Pipeline) Index(ctx context.Context, paths []string) (domain.IndexReport, error) {
	logger.Section("Index Build")
	report := domain.IndexReport{}

	var chunks []domain.Chunk
	for _, path := range paths {
		doc, err := p.loadDocument(ctx, path)
		if err != nil {
			return report, err
		}

		docChunks, err := p.splitter.Split(doc)
		if err != nil {
			return report, fmt.Errorf("chunking %s: %w", path, err)
		}

		logger.Info("Loaded %s: %d pages, %d chunks", path, len(doc.Pages), len(docChunks))
		report.Documents++
		report.Pages += len(doc.Pages)
		chunks = append(chunks, docChunks...)
	}

	if len(chunks) == 0 {
		logger.Warn("No chunks produced, index unchanged")
		return report, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return report, fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return report, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	records := make([]domain.IndexRecord, len(chunks))
	for i := range chunks {
		records[i] = domain.IndexRecord{Vector: vectors[i], Chunk: chunks[i]}
	}

	if err := p.index.Add(ctx, records); err != nil {
		return report, fmt.Errorf("adding records to index: %w", err)
	}

	if p.records != nil {
		if err := p.records.SaveRecords(ctx, records); err != nil {
			return report, fmt.Errorf("persisting records: %w", err)
		}
	}

	report.Chunks = len(records)
	report.Dimensions = p.embedder.Dimensions()
	logger.Info("Indexed %d chunks (%d dimensions)", report.Chunks, report.Dimensions)
	return report, nil
}

// Restore rebuilds the vector index from the configured record store
// without re-embedding. Returns the number of restored records.
func (p *Pipeline) Restore(ctx context.Context) (int, error) {
	if p.records == nil {
		return 0, fmt.Errorf("%w: no record store configured", domain.ErrInvalidConfiguration)
	}

	records, err := p.records.LoadRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading records: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	if err := p.index.Add(ctx, records); err != nil {
		return 0, fmt.Errorf("restoring records to index: %w", err)
	}

	logger.Info("Restored %d records into index", len(records))
	return len(records), nil
}

// Ask runs the query phase for one question. Failures of boundary calls
// are carried in the result (state, kind, message) with any retrieved
// context preserved; the error return is reserved for caller
// cancellation.
func (p *Pipeline) Ask(ctx context.Context, question string) (domain.QueryResult, error) {
	logger.Section("Query")
	result := domain.QueryResult{
		Question: question,
		State:    domain.QueryStateFailed,
	}

	retrieved, err := p.retriever.Retrieve(ctx, question)
	if err != nil {
		return p.fail(ctx, result, fmt.Errorf("retrieving context: %w", err))
	}
	result.Context = retrieved

	prompt := p.template.Render(retrieved, question)
	answer, err := p.generator.Generate(ctx, prompt, p.genOpts)
	if err != nil {
		return p.fail(ctx, result, fmt.Errorf("generating answer: %w", err))
	}

	result.Answer = answer
	result.State = domain.QueryStateAnswered

	contextText := joinChunkTexts(retrieved)
	verdict, err := p.grader.Grade(ctx, contextText, answer)
	if err != nil {
		// The answer stands; the grading failure is surfaced alongside it.
		result.Kind = domain.KindOf(err)
		result.Message = err.Error()
		return result, ctx.Err()
	}
	result.Verdicts = append(result.Verdicts, verdict)

	if p.policy == domain.VerdictPolicyRetryOnUngrounded && !verdict.Grounded() {
		p.retryGeneration(ctx, &result, prompt, contextText)
	}

	return result, ctx.Err()
}

// retryGeneration regenerates the answer once after an ungrounded verdict
// and grades the new answer. Both verdicts stay on the result. A failure
// during the retry keeps the first answer and records the failure kind.
func (p *Pipeline) retryGeneration(ctx context.Context, result *domain.QueryResult, prompt, contextText string) {
	logger.Info("Verdict ungrounded, regenerating once")

	answer, err := p.generator.Generate(ctx, prompt, p.genOpts)
	if err != nil {
		result.Kind = domain.KindOf(err)
		result.Message = fmt.Sprintf("regenerating answer: %v", err)
		return
	}

	verdict, err := p.grader.Grade(ctx, contextText, answer)
	if err != nil {
		result.Kind = domain.KindOf(err)
		result.Message = fmt.Sprintf("grading regenerated answer: %v", err)
		return
	}

	result.Answer = answer
	result.Verdicts = append(result.Verdicts, verdict)
}

func (p *Pipeline) fail(ctx context.Context, result domain.QueryResult, err error) (domain.QueryResult, error) {
	logger.Warn("Query failed: %v", err)
	result.State = domain.QueryStateFailed
	result.Kind = domain.KindOf(err)
	result.Message = err.Error()
	return result, ctx.Err()
}

func (p *Pipeline) loadDocument(ctx context.Context, path string) (domain.Document, error) {
	for _, loader := range p.loaders {
		if !loader.Supports(path) {
			continue
		}
		doc, err := loader.Load(ctx, path)
		if err != nil {
			return domain.Document{}, fmt.Errorf("loading %s: %w", path, err)
		}
		return doc, nil
	}
	return domain.Document{}, fmt.Errorf("%w: no loader supports %s", domain.ErrInvalidConfiguration, path)
}

func joinChunkTexts(chunks []domain.ScoredChunk) string {
	texts := make([]string, len(chunks))
	for i, sc := range chunks {
		texts[i] = sc.Chunk.Text
	}
	return strings.Join(texts, "\n\n")
}
