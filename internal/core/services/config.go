package services

import (
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
)

// Config keys read from the config store.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyTopK              = "retrieval.top_k"
	keyMaxTotalLength    = "selector.max_total_length"
	keyMinSimilarity     = "selector.min_similarity"
	keyMaxOverlapRatio   = "selector.max_overlap_ratio"
	keyMaxQueryLength    = "assembler.max_query_length"
	keyTemperature       = "generation.temperature"
	keyMaxTokens         = "generation.max_tokens"
	keyTimeout           = "generation.timeout"
	keyMaxAttempts       = "generation.max_attempts"
	keyBackoffInitial    = "generation.backoff_initial"
	keyBackoffMax        = "generation.backoff_max"
	keyPoolSize          = "generation.pool_size"
	keyRequestsPerMinute = "generation.requests_per_minute"
	keyConfidencePolicy  = "validator.confidence_policy"
	keyBatchWorkers      = "batch.workers"
	keyChunkSize         = "ingest.chunk_size"
	keyChunkOverlap      = "ingest.chunk_overlap"
	keyEmbedProvider     = "embedding.provider"
	keyEmbedModel        = "embedding.model"
	keyEmbedBaseURL      = "embedding.base_url"
	keyEmbedAPIKey       = "embedding.api_key"
	keyLLMProvider       = "llm.provider"
	keyLLMModel          = "llm.model"
	keyLLMBaseURL        = "llm.base_url"
	keyLLMAPIKey         = "llm.api_key"
	keyVectorBackend     = "vector.backend"
	keyQdrantURL         = "vector.qdrant_url"
	keyQdrantCollection  = "vector.qdrant_collection"
)

// Environment variables consulted for API keys when the config file has none.
const (
	EnvEmbeddingAPIKey = "CLAUSE_EMBEDDING_API_KEY"
	EnvLLMAPIKey       = "CLAUSE_LLM_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvQdrantAPIKey    = "CLAUSE_QDRANT_API_KEY"
)

// LoadConfig builds the process configuration from store, falling back to
// domain.DefaultConfig for missing keys. A nil store yields the defaults.
func LoadConfig(store driven.ConfigStore) (domain.Config, error) {
	return loadConfig(store, os.LookupEnv)
}

func loadConfig(store driven.ConfigStore, lookupEnv func(string) (string, bool)) (domain.Config, error) {
	cfg := domain.DefaultConfig()
	if store != nil {
		r := configReader{store: store}

		cfg.Retrieval.TopK = r.getInt(keyTopK, cfg.Retrieval.TopK)

		cfg.Selector.MaxTotalLength = r.getInt(keyMaxTotalLength, cfg.Selector.MaxTotalLength)
		cfg.Selector.MinSimilarity = r.getFloat(keyMinSimilarity, cfg.Selector.MinSimilarity)
		cfg.Selector.MaxOverlapRatio = r.getFloat(keyMaxOverlapRatio, cfg.Selector.MaxOverlapRatio)

		cfg.Assembler.MaxQueryLength = r.getInt(keyMaxQueryLength, cfg.Assembler.MaxQueryLength)

		cfg.Generation.Temperature = r.getFloat(keyTemperature, cfg.Generation.Temperature)
		cfg.Generation.MaxTokens = r.getInt(keyMaxTokens, cfg.Generation.MaxTokens)
		cfg.Generation.Timeout = r.getDuration(keyTimeout, cfg.Generation.Timeout)
		cfg.Generation.MaxAttempts = r.getInt(keyMaxAttempts, cfg.Generation.MaxAttempts)
		cfg.Generation.BackoffInitial = r.getDuration(keyBackoffInitial, cfg.Generation.BackoffInitial)
		cfg.Generation.BackoffMax = r.getDuration(keyBackoffMax, cfg.Generation.BackoffMax)
		cfg.Generation.PoolSize = r.getInt(keyPoolSize, cfg.Generation.PoolSize)
		cfg.Generation.RequestsPerMinute = r.getInt(keyRequestsPerMinute, cfg.Generation.RequestsPerMinute)

		cfg.Validator.ConfidencePolicy = domain.ConfidencePolicy(
			r.getString(keyConfidencePolicy, string(cfg.Validator.ConfidencePolicy)))

		cfg.Batch.Workers = r.getInt(keyBatchWorkers, cfg.Batch.Workers)

		cfg.Ingest.ChunkSize = r.getInt(keyChunkSize, cfg.Ingest.ChunkSize)
		cfg.Ingest.ChunkOverlap = r.getInt(keyChunkOverlap, cfg.Ingest.ChunkOverlap)

		cfg.Embedding.Provider = domain.AIProvider(r.getString(keyEmbedProvider, string(cfg.Embedding.Provider)))
		cfg.Embedding.Model = r.getString(keyEmbedModel, cfg.Embedding.Model)
		cfg.Embedding.BaseURL = store.GetString(keyEmbedBaseURL)
		cfg.Embedding.APIKey = store.GetString(keyEmbedAPIKey)

		cfg.LLM.Provider = domain.AIProvider(r.getString(keyLLMProvider, string(cfg.LLM.Provider)))
		cfg.LLM.Model = r.getString(keyLLMModel, cfg.LLM.Model)
		cfg.LLM.BaseURL = store.GetString(keyLLMBaseURL)
		cfg.LLM.APIKey = store.GetString(keyLLMAPIKey)

		cfg.Vector.Backend = domain.VectorBackend(r.getString(keyVectorBackend, string(cfg.Vector.Backend)))
		cfg.Vector.QdrantURL = store.GetString(keyQdrantURL)
		cfg.Vector.QdrantCollection = r.getString(keyQdrantCollection, cfg.Vector.QdrantCollection)

		if r.err != nil {
			return domain.Config{}, r.err
		}
	}

	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = apiKeyFromEnv(lookupEnv, EnvEmbeddingAPIKey, cfg.Embedding.Provider)
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = apiKeyFromEnv(lookupEnv, EnvLLMAPIKey, cfg.LLM.Provider)
	}

	if v, ok := lookupEnv(EnvQdrantAPIKey); ok {
		cfg.Vector.QdrantAPIKey = v
	}

	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// apiKeyFromEnv prefers the clause-specific variable, then the provider's own.
func apiKeyFromEnv(lookupEnv func(string) (string, bool), specific string, provider domain.AIProvider) string {
	if v, ok := lookupEnv(specific); ok && v != "" {
		return v
	}
	switch provider {
	case domain.ProviderOpenAI:
		v, _ := lookupEnv(EnvOpenAIAPIKey)
		return v
	case domain.ProviderAnthropic:
		v, _ := lookupEnv(EnvAnthropicAPIKey)
		return v
	default:
		return ""
	}
}

// configReader reads typed values, keeping the default when a key is absent
// and remembering the first malformed value.
type configReader struct {
	store driven.ConfigStore
	err   error
}

func (r *configReader) has(key string) bool {
	_, ok := r.store.Get(key)
	return ok
}

func (r *configReader) getInt(key string, def int) int {
	if !r.has(key) {
		return def
	}
	return r.store.GetInt(key)
}

func (r *configReader) getFloat(key string, def float64) float64 {
	if !r.has(key) {
		return def
	}
	return r.store.GetFloat(key)
}

func (r *configReader) getString(key, def string) string {
	if v := r.store.GetString(key); v != "" {
		return v
	}
	return def
}

// getDuration accepts Go duration strings ("750ms") or integer seconds.
func (r *configReader) getDuration(key string, def time.Duration) time.Duration {
	val, ok := r.store.Get(key)
	if !ok {
		return def
	}
	switch v := val.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			r.fail(fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, key, err))
			return def
		}
		return d
	case int64:
		return time.Duration(v) * time.Second
	case int:
		return time.Duration(v) * time.Second
	default:
		r.fail(fmt.Errorf("%w: %s: unsupported value %v", domain.ErrInvalidConfig, key, val))
		return def
	}
}

func (r *configReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}
