// Package llm holds the claim-extraction model providers. The core pipeline
// validates and persists extraction output; only the CLI and server invoke a
// provider, and both treat its output as untrusted until validated.
package llm

import (
	"context"

	"github.com/tkarpov/claimscope/internal/model"
)

// Provider defines the interface for claim-extraction backends.
type Provider interface {
	// Name returns the provider name
	Name() string

	// ExtractClaims sends the extraction prompt and returns the raw model
	// output. The caller validates it; providers never parse claims.
	ExtractClaims(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ExtractRequest contains the input for one extraction call.
type ExtractRequest struct {
	// System is the extraction contract prompt
	System string

	// User is the article payload prompt
	User string

	// Model overrides the configured model when set
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ExtractResponse contains the raw model output.
type ExtractResponse struct {
	// RawJSON is the unvalidated model output
	RawJSON string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:  mc.Provider,
		Model:     mc.Model,
		APIKey:    mc.APIKey,
		BaseURL:   mc.BaseURL,
		Timeout:   mc.Timeout,
		MaxTokens: mc.MaxTokens,
	}
}
