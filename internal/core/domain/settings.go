package domain

// AIProvider represents an AI service provider.
type AIProvider string

const (
	// ProviderOllama uses local Ollama server.
	ProviderOllama AIProvider = "ollama"

	// ProviderOpenAI uses OpenAI API or a compatible endpoint.
	ProviderOpenAI AIProvider = "openai"

	// ProviderAnthropic uses Anthropic API (LLM only, no embeddings).
	ProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the provider is a known value.
func (p AIProvider) IsValid() bool {
	switch p {
	case ProviderOllama, ProviderOpenAI, ProviderAnthropic:
		return true
	default:
		return false
	}
}

// String returns the string representation of the provider.
func (p AIProvider) String() string {
	return string(p)
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == ProviderOpenAI || p == ProviderAnthropic
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == ProviderOllama || p == ProviderOpenAI
}

// EmbeddingSettings configures the embedding service.
type EmbeddingSettings struct {
	// Provider is the embedding provider.
	Provider AIProvider

	// Model is the model name (e.g., "nomic-embed-text", "text-embedding-3-small").
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding settings are complete.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() || e.Model == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures the generator.
type LLMSettings struct {
	// Provider is the LLM provider.
	Provider AIProvider

	// Model is the model name (e.g., "llama3.2", "gpt-4o-mini").
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM settings are complete.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Model == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorBackend selects the vector index implementation.
type VectorBackend string

const (
	// VectorBackendSQLite searches embeddings stored alongside chunks.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendMemory keeps vectors in process (lost on exit).
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendQdrant uses a Qdrant server over its REST API.
	VectorBackendQdrant VectorBackend = "qdrant"
)

// IsValid returns true if the backend is a known value.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendSQLite, VectorBackendMemory, VectorBackendQdrant:
		return true
	default:
		return false
	}
}

// VectorSettings configures the vector index.
type VectorSettings struct {
	Backend          VectorBackend
	QdrantURL        string
	QdrantCollection string

	// QdrantAPIKey is read from the environment only.
	QdrantAPIKey string
}
