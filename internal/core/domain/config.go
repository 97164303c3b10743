package domain

import (
	"fmt"
	"math"
	"time"
)

// ConfidencePolicy controls how out-of-range confidence values are handled.
type ConfidencePolicy string

const (
	// ConfidenceClamp forces the value into [0, 1] and flags the answer.
	ConfidenceClamp ConfidencePolicy = "clamp"

	// ConfidenceReject treats an out-of-range value as a schema violation.
	ConfidenceReject ConfidencePolicy = "reject"

	// ConfidencePassthrough keeps the value unchanged and flags the answer.
	ConfidencePassthrough ConfidencePolicy = "passthrough"
)

// IsValid returns true if the policy is a known value.
func (p ConfidencePolicy) IsValid() bool {
	switch p {
	case ConfidenceClamp, ConfidenceReject, ConfidencePassthrough:
		return true
	default:
		return false
	}
}

// RetrievalConfig configures the retrieval call.
type RetrievalConfig struct {
	// TopK is the number of candidates requested from the vector index.
	TopK int
}

// SelectorConfig configures evidence selection.
type SelectorConfig struct {
	// MaxTotalLength caps the summed rune length of admitted fragments.
	MaxTotalLength int

	// MinSimilarity drops candidates scoring below it.
	MinSimilarity float64

	// MaxOverlapRatio is the largest tolerated same-document overlap.
	MaxOverlapRatio float64
}

// AssemblerConfig configures prompt assembly.
type AssemblerConfig struct {
	// MaxQueryLength is the longest accepted query in runes.
	MaxQueryLength int
}

// GenerationConfig configures generator calls and the retry policy.
type GenerationConfig struct {
	Temperature float64
	MaxTokens   int

	// Timeout bounds each individual attempt.
	Timeout time.Duration

	// MaxAttempts is the total number of generation calls allowed per query.
	MaxAttempts int

	// BackoffInitial is the wait before the second attempt; it doubles per attempt.
	BackoffInitial time.Duration

	// BackoffMax caps the wait between attempts.
	BackoffMax time.Duration

	// PoolSize is the number of generator handles shared across in-flight queries.
	PoolSize int

	// RequestsPerMinute paces generator calls. Zero disables pacing.
	RequestsPerMinute int
}

// ValidatorConfig configures response validation.
type ValidatorConfig struct {
	ConfidencePolicy ConfidencePolicy
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	// Workers is the number of queries processed concurrently.
	Workers int
}

// IngestConfig configures document chunking.
type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// Config is the process-wide configuration. It is loaded once at startup,
// passed explicitly to each component and never mutated afterwards.
type Config struct {
	Retrieval  RetrievalConfig
	Selector   SelectorConfig
	Assembler  AssemblerConfig
	Generation GenerationConfig
	Validator  ValidatorConfig
	Batch      BatchConfig
	Ingest     IngestConfig
	Embedding  EmbeddingSettings
	LLM        LLMSettings
	Vector     VectorSettings
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Retrieval: RetrievalConfig{TopK: 20},
		Selector: SelectorConfig{
			MaxTotalLength:  6000,
			MinSimilarity:   0.5,
			MaxOverlapRatio: 0.3,
		},
		Assembler: AssemblerConfig{MaxQueryLength: 2000},
		Generation: GenerationConfig{
			Temperature:    0,
			MaxTokens:      1024,
			Timeout:        60 * time.Second,
			MaxAttempts:    3,
			BackoffInitial: 500 * time.Millisecond,
			BackoffMax:     8 * time.Second,
			PoolSize:       2,
		},
		Validator: ValidatorConfig{ConfidencePolicy: ConfidenceClamp},
		Batch:     BatchConfig{Workers: 4},
		Ingest:    IngestConfig{ChunkSize: 1000, ChunkOverlap: 200},
		Embedding: EmbeddingSettings{
			Provider: ProviderOllama,
			Model:    "nomic-embed-text",
		},
		LLM: LLMSettings{
			Provider: ProviderOllama,
			Model:    "llama3.2",
		},
		Vector: VectorSettings{
			Backend:          VectorBackendSQLite,
			QdrantCollection: "clause",
		},
	}
}

// Validate checks every value is within its accepted range.
func (c Config) Validate() error {
	switch {
	case c.Retrieval.TopK <= 0:
		return fmt.Errorf("%w: retrieval.top_k must be positive", ErrInvalidConfig)
	case c.Selector.MaxTotalLength <= 0:
		return fmt.Errorf("%w: selector.max_total_length must be positive", ErrInvalidConfig)
	case !inUnitInterval(c.Selector.MinSimilarity):
		return fmt.Errorf("%w: selector.min_similarity must be within [0, 1]", ErrInvalidConfig)
	case !inUnitInterval(c.Selector.MaxOverlapRatio):
		return fmt.Errorf("%w: selector.max_overlap_ratio must be within [0, 1]", ErrInvalidConfig)
	case c.Assembler.MaxQueryLength <= 0:
		return fmt.Errorf("%w: assembler.max_query_length must be positive", ErrInvalidConfig)
	case c.Generation.Temperature < 0 || math.IsNaN(c.Generation.Temperature):
		return fmt.Errorf("%w: generation.temperature must not be negative", ErrInvalidConfig)
	case c.Generation.MaxTokens < 0:
		return fmt.Errorf("%w: generation.max_tokens must not be negative", ErrInvalidConfig)
	case c.Generation.Timeout <= 0:
		return fmt.Errorf("%w: generation.timeout must be positive", ErrInvalidConfig)
	case c.Generation.MaxAttempts <= 0:
		return fmt.Errorf("%w: generation.max_attempts must be positive", ErrInvalidConfig)
	case c.Generation.BackoffInitial < 0 || c.Generation.BackoffMax < 0:
		return fmt.Errorf("%w: generation backoff must not be negative", ErrInvalidConfig)
	case c.Generation.PoolSize <= 0:
		return fmt.Errorf("%w: generation.pool_size must be positive", ErrInvalidConfig)
	case c.Generation.RequestsPerMinute < 0:
		return fmt.Errorf("%w: generation.requests_per_minute must not be negative", ErrInvalidConfig)
	case !c.Validator.ConfidencePolicy.IsValid():
		return fmt.Errorf("%w: unknown validator.confidence_policy %q", ErrInvalidConfig, c.Validator.ConfidencePolicy)
	case c.Batch.Workers <= 0:
		return fmt.Errorf("%w: batch.workers must be positive", ErrInvalidConfig)
	case c.Ingest.ChunkSize <= 0 || c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize:
		return fmt.Errorf("%w: ingest chunk overlap must be smaller than chunk size", ErrInvalidConfig)
	case !c.Vector.Backend.IsValid():
		return fmt.Errorf("%w: unknown vector.backend %q", ErrInvalidConfig, c.Vector.Backend)
	case c.Vector.Backend == VectorBackendQdrant && c.Vector.QdrantURL == "":
		return fmt.Errorf("%w: vector.qdrant_url is required for the qdrant backend", ErrInvalidConfig)
	}
	return nil
}

func inUnitInterval(v float64) bool {
	return v >= 0 && v <= 1
}
