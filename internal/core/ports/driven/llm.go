package driven

import "context"

// LLMService is the generator consumed by the answer pipeline.
//
// Implementations must classify transport failures so the pipeline can decide
// whether to retry:
//   - deadline exceeded or client timeout: wrap domain.ErrGeneratorTimeout
//   - connection failure, 5xx or 429: wrap domain.ErrGeneratorUnreachable
//   - other 4xx: wrap domain.ErrGeneratorRejected
//
// Implementations may include:
//   - OpenAI (and compatible servers)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Chat conducts a multi-turn conversation.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// JSON asks the provider to constrain output to a JSON object when supported.
	JSON bool
}
