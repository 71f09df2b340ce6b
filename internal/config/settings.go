// Package config assembles application settings from three layers:
// built-in defaults, the TOML config file, and environment variables.
// Later layers win, so an exported API key always beats the file.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"

	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
	"github.com/custodia-labs/veridoc-cli/internal/core/ports/driven"
)

// envOverrides holds environment variable overrides. API keys are only
// read from the environment, never from the config file, so they don't
// end up on disk.
type envOverrides struct {
	OllamaURL       string  `env:"VERIDOC_OLLAMA_URL"`
	OpenAIAPIKey    string  `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string  `env:"ANTHROPIC_API_KEY"`
	EmbeddingRPS    float64 `env:"VERIDOC_EMBEDDING_RPS"`
}

// LoadSettings builds the application settings. The store may be nil,
// in which case only defaults and environment apply.
func LoadSettings(store driven.ConfigStore) (domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()

	if store != nil {
		applyStore(&settings, store)
	}

	if err := applyEnv(&settings); err != nil {
		return domain.AppSettings{}, err
	}

	if err := settings.Validate(); err != nil {
		return domain.AppSettings{}, err
	}
	return settings, nil
}

// applyStore overlays config file values onto the settings. Absent keys
// leave the defaults untouched.
func applyStore(s *domain.AppSettings, store driven.ConfigStore) {
	setProvider(&s.Embedding.Provider, store, "embedding.provider")
	setString(&s.Embedding.Model, store, "embedding.model")
	setString(&s.Embedding.BaseURL, store, "embedding.base_url")
	setFloat(&s.Embedding.RequestsPerSecond, store, "embedding.requests_per_second")

	setProvider(&s.Generation.Provider, store, "generation.provider")
	setString(&s.Generation.Model, store, "generation.model")
	setString(&s.Generation.BaseURL, store, "generation.base_url")
	setFloat(&s.Generation.Temperature, store, "generation.temperature")
	setInt(&s.Generation.MaxTokens, store, "generation.max_tokens")

	// The grading identity inherits the generation provider unless set.
	s.Grading.Provider = s.Generation.Provider
	s.Grading.Model = s.Generation.Model
	s.Grading.BaseURL = s.Generation.BaseURL
	setProvider(&s.Grading.Provider, store, "grading.provider")
	setString(&s.Grading.Model, store, "grading.model")
	setString(&s.Grading.BaseURL, store, "grading.base_url")
	setFloat(&s.Grading.Temperature, store, "grading.temperature")
	setInt(&s.Grading.MaxTokens, store, "grading.max_tokens")

	setInt(&s.Chunking.ChunkSize, store, "chunking.size")
	setInt(&s.Chunking.ChunkOverlap, store, "chunking.overlap")

	setInt(&s.Retrieval.K, store, "retrieval.k")

	if v := store.GetString("index.backend"); v != "" {
		s.Index.Backend = domain.IndexBackend(v)
	}
	setString(&s.Index.Path, store, "index.path")

	if v := store.GetString("pipeline.verdict_policy"); v != "" {
		s.Pipeline.VerdictPolicy = domain.VerdictPolicy(v)
	}
}

// applyEnv overlays environment variables onto the settings.
func applyEnv(s *domain.AppSettings) error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}

	if overrides.OllamaURL != "" {
		if s.Embedding.Provider == domain.AIProviderOllama {
			s.Embedding.BaseURL = overrides.OllamaURL
		}
		if s.Generation.Provider == domain.AIProviderOllama {
			s.Generation.BaseURL = overrides.OllamaURL
		}
		if s.Grading.Provider == domain.AIProviderOllama {
			s.Grading.BaseURL = overrides.OllamaURL
		}
	}

	if overrides.OpenAIAPIKey != "" {
		applyAPIKey(s, domain.AIProviderOpenAI, overrides.OpenAIAPIKey)
	}
	if overrides.AnthropicAPIKey != "" {
		applyAPIKey(s, domain.AIProviderAnthropic, overrides.AnthropicAPIKey)
	}

	if overrides.EmbeddingRPS > 0 {
		s.Embedding.RequestsPerSecond = overrides.EmbeddingRPS
	}

	return nil
}

// applyAPIKey sets the key on every identity using the given provider.
func applyAPIKey(s *domain.AppSettings, provider domain.AIProvider, key string) {
	if s.Embedding.Provider == provider {
		s.Embedding.APIKey = key
	}
	if s.Generation.Provider == provider {
		s.Generation.APIKey = key
	}
	if s.Grading.Provider == provider {
		s.Grading.APIKey = key
	}
}

func setString(dst *string, store driven.ConfigStore, key string) {
	if v := store.GetString(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, store driven.ConfigStore, key string) {
	if _, ok := store.Get(key); ok {
		*dst = store.GetInt(key)
	}
}

func setFloat(dst *float64, store driven.ConfigStore, key string) {
	if _, ok := store.Get(key); ok {
		*dst = store.GetFloat(key)
	}
}

func setProvider(dst *domain.AIProvider, store driven.ConfigStore, key string) {
	if v := store.GetString(key); v != "" {
		*dst = domain.AIProvider(v)
	}
}
