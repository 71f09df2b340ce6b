package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/veridoc-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/veridoc-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/veridoc-cli/internal/config"
	"github.com/custodia-labs/veridoc-cli/internal/core/domain"
	"github.com/custodia-labs/veridoc-cli/internal/core/ports/driven"
	"github.com/custodia-labs/veridoc-cli/internal/core/services"
	"github.com/custodia-labs/veridoc-cli/internal/loaders"
	"github.com/custodia-labs/veridoc-cli/internal/logger"
	"github.com/custodia-labs/veridoc-cli/internal/postprocessors/chunker"
)

// app bundles the wired pipeline and the resources behind it.
type app struct {
	settings domain.AppSettings
	pipeline *services.Pipeline

	embedder  driven.EmbeddingService
	generator driven.LLMService
	grader    driven.LLMService
	index     driven.VectorIndex
	records   driven.RecordStore
	prompts   *file.PromptStore
}

// Close releases every resource the app holds.
func (a *app) Close() {
	if a.prompts != nil {
		a.prompts.Close()
	}
	if a.records != nil {
		a.records.Close()
	}
	if a.index != nil {
		a.index.Close()
	}
	if a.grader != nil {
		a.grader.Close()
	}
	if a.generator != nil {
		a.generator.Close()
	}
	if a.embedder != nil {
		a.embedder.Close()
	}
}

// buildApp wires the full pipeline from configuration. A persistent
// index backend is restored into the in-memory index before returning.
func buildApp(ctx context.Context) (*app, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	logger.Debug("Config file: %s", configStore.Path())

	settings, err := config.LoadSettings(configStore)
	if err != nil {
		return nil, err
	}

	promptDir := ""
	if configDir != "" {
		promptDir = filepath.Join(configDir, "prompts")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, err
	}

	if settings.Pipeline.PromptTemplate == "" {
		if text, err := prompts.Load(driven.PromptAnswer); err == nil {
			settings.Pipeline.PromptTemplate = text
		}
	}

	a := &app{settings: settings, prompts: prompts}
	if err := a.wire(ctx, prompts); err != nil {
		a.Close()
		return nil, err
	}

	// Prompt edits take effect without a restart while the app runs.
	if err := prompts.Watch(); err != nil {
		logger.Warn("Prompt hot reload disabled: %v", err)
	}
	return a, nil
}

func (a *app) wire(ctx context.Context, prompts driven.PromptStore) error {
	var err error

	a.embedder, err = ai.CreateAndValidateEmbeddingService(a.settings.Embedding)
	if err != nil {
		return fmt.Errorf("embedding service: %w", err)
	}

	a.generator, err = ai.CreateAndValidateLLMService(a.settings.Generation)
	if err != nil {
		return fmt.Errorf("generation service: %w", err)
	}

	a.grader, err = ai.CreateAndValidateLLMService(a.settings.Grading)
	if err != nil {
		return fmt.Errorf("grading service: %w", err)
	}

	a.index, err = ai.CreateVectorIndex(a.settings.Index)
	if err != nil {
		return fmt.Errorf("creating vector index: %w", err)
	}

	a.records, err = ai.CreateRecordStore(a.settings.Index)
	if err != nil {
		return fmt.Errorf("opening record store: %w", err)
	}

	splitter, err := chunker.New(
		chunker.WithChunkSize(a.settings.Chunking.ChunkSize),
		chunker.WithOverlap(a.settings.Chunking.ChunkOverlap),
	)
	if err != nil {
		return err
	}

	grader := services.NewGrader(a.grader)
	system, sysErr := prompts.Load(driven.PromptGradeSystem)
	user, userErr := prompts.Load(driven.PromptGradeUser)
	if sysErr == nil && userErr == nil {
		if err := grader.SetPrompts(system, user); err != nil {
			return fmt.Errorf("invalid grading prompts: %w", err)
		}
	}

	pipeline, err := services.NewPipeline(splitter, a.embedder, a.index, a.generator, grader, a.settings)
	if err != nil {
		return err
	}
	pipeline.SetLoaders(loaders.Default())

	if a.records != nil {
		pipeline.SetRecordStore(a.records)
		restored, err := pipeline.Restore(ctx)
		if err != nil {
			return fmt.Errorf("restoring index: %w", err)
		}
		if restored > 0 {
			logger.Debug("Restored %d records from %s", restored, a.settings.Index.Path)
		}
	}

	a.pipeline = pipeline
	return nil
}
