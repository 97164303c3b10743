package driven

import (
	"context"

	"github.com/custodia-labs/clause/internal/core/domain"
)

// AIConfigValidator checks provider settings by contacting the provider.
type AIConfigValidator interface {
	// ValidateEmbedding pings the embedding provider.
	// Returns nil if configuration is valid or not configured.
	ValidateEmbedding(ctx context.Context, settings *domain.EmbeddingSettings) error

	// ValidateLLM pings the generator provider.
	// Returns nil if configuration is valid or not configured.
	ValidateLLM(ctx context.Context, settings *domain.LLMSettings) error
}
