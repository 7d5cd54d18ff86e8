// Package ai provides factory functions for creating AI service adapters
// from settings, with connectivity validation and graceful fallbacks.
package ai

import (
	"context"
	"fmt"
	"time"

	localembed "github.com/custodia-labs/finquery/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/finquery/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/finquery/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/finquery/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/finquery/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/finquery/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/finquery/internal/core/domain"
	"github.com/custodia-labs/finquery/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity
// validation.
const pingTimeout = 5 * time.Second

// InitResult contains the outcome of AI service initialisation. The
// embedding service is never nil: an unconfigured or unreachable provider
// falls back to the local hash embedder so retrieval and the semantic
// cache keep working. The LLM service is nil when unavailable; the
// synthesis layer degrades to extractive answers in that case.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string // Non-fatal issues that caused fallback.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Initialise builds AI services from settings. It never returns an error:
// every failure is converted to a fallback plus a warning.
func Initialise(settings domain.AppSettings) *InitResult {
	result := &InitResult{}

	embedSvc, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("embedding provider unavailable (%v); using local hash embeddings", err))
		result.EmbeddingService = localembed.NewEmbeddingService(0)
	case embedSvc == nil:
		result.EmbeddingService = localembed.NewEmbeddingService(0)
	default:
		result.EmbeddingService = embedSvc
	}

	llmSvc, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("LLM provider unavailable (%v); answers will be extractive", err))
	} else {
		result.LLMService = llmSvc
	}

	return result
}

// CreateAndValidateEmbeddingService creates an embedding service and
// validates connectivity. Returns (nil, nil) when not configured.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'finquery settings' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'finquery settings' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates
// connectivity. Returns (nil, nil) when not configured.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'finquery settings' to fix",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'finquery settings' to fix",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// CreateEmbeddingService creates the appropriate embedding service based
// on settings. Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		// Anthropic does not support embeddings.
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
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
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
