package driven

import "context"

// EmbeddingService maps text into the vector space searched by VectorIndex.
// Queries and chunks must be embedded by the same model.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length, or 0 until the first call when the
	// provider does not advertise it.
	Dimensions() int

	ModelName() string

	// Ping sends a minimal request to confirm the model is reachable.
	Ping(ctx context.Context) error

	Close() error
}
