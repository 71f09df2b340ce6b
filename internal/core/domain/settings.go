package domain

import "fmt"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerSecond caps bulk embedding throughput during index
	// builds. Zero means unlimited.
	RequestsPerSecond float64
}

// Validate checks the embedding settings are usable.
func (e EmbeddingSettings) Validate() error {
	if !e.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidConfiguration, e.Provider)
	}
	if e.Model == "" {
		return fmt.Errorf("%w: embedding model is required", ErrInvalidConfiguration)
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return fmt.Errorf("%w: %s embedding provider requires an API key", ErrInvalidConfiguration, e.Provider)
	}
	if e.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: embedding requests_per_second must not be negative", ErrInvalidConfiguration)
	}
	return nil
}

// LLMSettings holds LLM provider configuration for one model identity.
// The pipeline uses two identities through the same port: one for answer
// generation and one for grading.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature is the sampling temperature. The pipeline defaults
	// both identities to 0 for reproducibility.
	Temperature float64

	// MaxTokens caps the completion length. Zero uses the adapter default.
	MaxTokens int
}

// Validate checks the LLM settings are usable.
func (l LLMSettings) Validate() error {
	if !l.Provider.IsValid() {
		return fmt.Errorf("%w: unknown LLM provider %q", ErrInvalidConfiguration, l.Provider)
	}
	if l.Model == "" {
		return fmt.Errorf("%w: LLM model is required", ErrInvalidConfiguration)
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return fmt.Errorf("%w: %s LLM provider requires an API key", ErrInvalidConfiguration, l.Provider)
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return fmt.Errorf("%w: temperature %v out of range [0, 2]", ErrInvalidConfiguration, l.Temperature)
	}
	if l.MaxTokens < 0 {
		return fmt.Errorf("%w: max_tokens must not be negative", ErrInvalidConfiguration)
	}
	return nil
}

// ChunkingSettings holds chunker configuration.
type ChunkingSettings struct {
	// ChunkSize is the maximum chunk length in runes.
	ChunkSize int

	// ChunkOverlap is the exact overlap between consecutive chunks of
	// one page, in runes.
	ChunkOverlap int
}

// Validate checks the chunking invariants.
func (c ChunkingSettings) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidConfiguration, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk_overlap must not be negative, got %d", ErrInvalidConfiguration, c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap %d must be smaller than chunk_size %d",
			ErrInvalidConfiguration, c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

// RetrievalSettings holds retriever configuration.
type RetrievalSettings struct {
	// K is the default number of chunks to retrieve per query.
	K int
}

// Validate checks the retrieval invariants.
func (r RetrievalSettings) Validate() error {
	if r.K <= 0 {
		return fmt.Errorf("%w: retrieval k must be positive, got %d", ErrInvalidConfiguration, r.K)
	}
	return nil
}

// IndexBackend selects the vector index implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendMemory is the exact in-memory brute-force index.
	IndexBackendMemory IndexBackend = "memory"

	// IndexBackendChromem is the chromem-go embedded vector database.
	IndexBackendChromem IndexBackend = "chromem"

	// IndexBackendSQLite is the persistent exact index over sqlite.
	IndexBackendSQLite IndexBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendMemory, IndexBackendChromem, IndexBackendSQLite:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendMemory:
		return "Memory (exact, in-process)"
	case IndexBackendChromem:
		return "Chromem (embedded vector database)"
	case IndexBackendSQLite:
		return "SQLite (exact, persistent)"
	default:
		return unknownDescription
	}
}

// IndexSettings holds vector index configuration.
type IndexSettings struct {
	// Backend selects the index implementation.
	Backend IndexBackend

	// Path is the on-disk location for persistent backends.
	Path string
}

// Validate checks the index settings are usable.
func (i IndexSettings) Validate() error {
	if !i.Backend.IsValid() {
		return fmt.Errorf("%w: unknown index backend %q", ErrInvalidConfiguration, i.Backend)
	}
	if i.Backend == IndexBackendSQLite && i.Path == "" {
		return fmt.Errorf("%w: sqlite index backend requires a path", ErrInvalidConfiguration)
	}
	return nil
}

// VerdictPolicy controls what the pipeline does with an ungrounded verdict.
type VerdictPolicy string

// Available verdict policies.
const (
	// VerdictPolicyReportOnly attaches the verdict to the result without
	// changing the answer.
	VerdictPolicyReportOnly VerdictPolicy = "report_only"

	// VerdictPolicyRetryOnUngrounded regenerates the answer once when the
	// first verdict is ungrounded. Both verdicts are reported.
	VerdictPolicyRetryOnUngrounded VerdictPolicy = "retry_on_ungrounded"
)

// IsValid returns true if the policy is recognised.
func (p VerdictPolicy) IsValid() bool {
	return p == VerdictPolicyReportOnly || p == VerdictPolicyRetryOnUngrounded
}

// String returns the string representation.
func (p VerdictPolicy) String() string {
	return string(p)
}

// Description returns a human-readable description of the policy.
func (p VerdictPolicy) Description() string {
	switch p {
	case VerdictPolicyReportOnly:
		return "Report only (verdict is advisory metadata)"
	case VerdictPolicyRetryOnUngrounded:
		return "Retry on ungrounded (one regeneration attempt)"
	default:
		return unknownDescription
	}
}

// PipelineSettings holds orchestrator configuration.
type PipelineSettings struct {
	// VerdictPolicy controls the response to an ungrounded verdict.
	VerdictPolicy VerdictPolicy

	// PromptTemplate overrides the default answer prompt. Must contain
	// the {context} and {question} placeholders when set.
	PromptTemplate string
}

// Validate checks the pipeline settings are usable.
func (p PipelineSettings) Validate() error {
	if !p.VerdictPolicy.IsValid() {
		return fmt.Errorf("%w: unknown verdict policy %q", ErrInvalidConfiguration, p.VerdictPolicy)
	}
	return nil
}

// Default configuration values.
const (
	// DefaultChunkSize is the default maximum chunk length in runes.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the default overlap between consecutive
	// chunks in runes.
	DefaultChunkOverlap = 200

	// DefaultRetrievalK is the default number of chunks per retrieval.
	DefaultRetrievalK = 5
)

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Generation holds the answer-generation model settings.
	Generation LLMSettings

	// Grading holds the grounding-grader model settings.
	Grading LLMSettings

	// Chunking holds chunker settings.
	Chunking ChunkingSettings

	// Retrieval holds retriever settings.
	Retrieval RetrievalSettings

	// Index holds vector index settings.
	Index IndexSettings

	// Pipeline holds orchestrator settings.
	Pipeline PipelineSettings
}

// Validate checks every settings group; the first violation is returned.
func (s AppSettings) Validate() error {
	if err := s.Embedding.Validate(); err != nil {
		return err
	}
	if err := s.Generation.Validate(); err != nil {
		return err
	}
	if err := s.Grading.Validate(); err != nil {
		return err
	}
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if err := s.Retrieval.Validate(); err != nil {
		return err
	}
	if err := s.Index.Validate(); err != nil {
		return err
	}
	return s.Pipeline.Validate()
}

// DefaultAppSettings returns settings with sensible local-first defaults.
// Cloud providers require explicit configuration.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    "nomic-embed-text",
			BaseURL:  "http://localhost:11434",
		},
		Generation: LLMSettings{
			Provider:    AIProviderOllama,
			Model:       "llama3.2",
			BaseURL:     "http://localhost:11434",
			Temperature: 0,
		},
		Grading: LLMSettings{
			Provider:    AIProviderOllama,
			Model:       "llama3.2",
			BaseURL:     "http://localhost:11434",
			Temperature: 0,
		},
		Chunking: ChunkingSettings{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			K: DefaultRetrievalK,
		},
		Index: IndexSettings{
			Backend: IndexBackendMemory,
		},
		Pipeline: PipelineSettings{
			VerdictPolicy: VerdictPolicyReportOnly,
		},
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
