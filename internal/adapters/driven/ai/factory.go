// Package ai provides factory functions for creating AI service adapters
// and the vector index from application settings.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/veridoc-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/veridoc-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/veridoc-cli/internal/adapters/driven/embedding/ratelimit"
	anthropicllm "github.com/custodia-labs/veridoc-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/veridoc-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/veridoc-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/veridoc-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/veridoc-cli/internal/adapters/driven/vector/chromem"
	"github.com/custodia-labs/veridoc-cli/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
	"github.com/custodia-labs/veridoc-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbeddingService creates the appropriate embedding service based
// on settings. A requests_per_second limit wraps the service in a rate
// limiter.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	var svc driven.EmbeddingService
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaEmbedding(settings)

	case domain.AIProviderOpenAI:
		created, err := createOpenAIEmbedding(settings)
		if err != nil {
			return nil, err
		}
		svc = created

	case domain.AIProviderAnthropic:
		// Anthropic does not offer an embeddings endpoint.
		return nil, fmt.Errorf("%w: anthropic does not support embeddings, use ollama or openai",
			domain.ErrInvalidConfiguration)

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q",
			domain.ErrInvalidConfiguration, settings.Provider)
	}

	return ratelimit.Wrap(svc, settings.RequestsPerSecond), nil
}

// CreateLLMService creates the appropriate LLM service based on settings.
// The pipeline calls this twice: once for the generation identity and
// once for the grading identity.
func CreateLLMService(settings domain.LLMSettings) (driven.LLMService, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q",
			domain.ErrInvalidConfiguration, settings.Provider)
	}
}

// CreateVectorIndex creates the vector index selected by settings.
// The sqlite backend is the exact in-memory index restored from and
// persisted to a record store; see CreateRecordStore.
func CreateVectorIndex(settings domain.IndexSettings) (driven.VectorIndex, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	switch settings.Backend {
	case domain.IndexBackendMemory, domain.IndexBackendSQLite:
		return memory.New(), nil

	case domain.IndexBackendChromem:
		return chromem.New()

	default:
		return nil, fmt.Errorf("%w: unsupported index backend %q",
			domain.ErrInvalidConfiguration, settings.Backend)
	}
}

// CreateRecordStore creates the record store for persistent index
// backends. Returns nil for in-process backends that keep nothing on
// disk.
func CreateRecordStore(settings domain.IndexSettings) (driven.RecordStore, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if settings.Backend != domain.IndexBackendSQLite {
		return nil, nil
	}
	return sqlite.NewStore(settings.Path)
}

// CreateAndValidateEmbeddingService creates an embedding service and
// validates connectivity with a short ping.
func CreateAndValidateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("embedding service unreachable: %w", err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates
// connectivity with a short ping.
func CreateAndValidateLLMService(settings domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("LLM service unreachable: %w", err)
	}
	return svc, nil
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}
