// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/notegraph-labs/notegraph-cli/internal/adapters/driven/enrichment/googlesearch"
	anthropicllm "github.com/notegraph-labs/notegraph-cli/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/notegraph-labs/notegraph-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/notegraph-labs/notegraph-cli/internal/adapters/driven/llm/openai"
	openaivision "github.com/notegraph-labs/notegraph-cli/internal/adapters/driven/vision/openai"
	"github.com/notegraph-labs/notegraph-cli/internal/core/domain"
	"github.com/notegraph-labs/notegraph-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// LLMSettings selects and configures a language model provider.
type LLMSettings struct {
	// Provider selects the service. Empty means ollama.
	Provider domain.AIProvider

	// Model is the provider-specific model name. Empty uses the adapter's
	// default.
	Model string

	// APIKey authenticates cloud providers. Ignored by ollama.
	APIKey string

	// BaseURL overrides the provider endpoint.
	BaseURL string
}

// EnrichmentSettings configures the Google search enricher.
type EnrichmentSettings struct {
	// APIKey is the Google API key.
	APIKey string

	// SearchEngineID is the programmable search engine cx value.
	SearchEngineID string
}

// IsConfigured reports whether enrichment has the credentials it needs.
func (s EnrichmentSettings) IsConfigured() bool {
	return s.APIKey != "" && s.SearchEngineID != ""
}

// CreateLLMService creates the language model adapter for the configured
// provider.
func CreateLLMService(settings LLMSettings) (driven.LanguageModel, error) {
	provider := settings.Provider
	if provider == "" {
		provider = domain.AIProviderOllama
	}

	switch provider {
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
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// CreateAndValidateLLMService creates an LLM service and validates
// connectivity. Returns an error with guidance when the service cannot be
// reached.
func CreateAndValidateLLMService(settings LLMSettings) (driven.LanguageModel, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'notegraph config set llm.provider <name>' to fix",
			domain.ErrLLMUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Check the provider is running and credentials are set",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// CreateEnricher creates the Google search enricher, or nil when enrichment
// is not configured. A nil enricher is valid: the synthesizer simply skips
// supplementation.
func CreateEnricher(ctx context.Context, settings EnrichmentSettings) (driven.Enricher, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	enricher, err := googlesearch.NewEnricher(ctx, googlesearch.Config{
		APIKey:         settings.APIKey,
		SearchEngineID: settings.SearchEngineID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEnrichmentUnavailable, err)
	}

	return enricher, nil
}

// CreateImageAnalyzer creates the OpenAI vision analyzer, or nil when no
// API key is configured. A nil analyzer is valid: images stay attached
// without descriptions.
func CreateImageAnalyzer(settings LLMSettings) (driven.ImageAnalyzer, error) {
	if settings.APIKey == "" {
		return nil, nil
	}

	analyzer, err := openaivision.NewAnalyzer(openaivision.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalysisUnavailable, err)
	}

	return analyzer, nil
}
