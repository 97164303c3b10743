package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a configuration value is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedFormat indicates no normaliser handles a source file.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrMalformedQuery indicates the query is empty or exceeds the maximum length.
	// It is a caller error and is never retried.
	ErrMalformedQuery = errors.New("malformed query")

	// ErrRetrievalFailed indicates the retrieval collaborators could not produce candidates.
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// Generator Errors.

	// ErrGeneratorTimeout indicates a generation call exceeded its deadline.
	// Retried with backoff.
	ErrGeneratorTimeout = errors.New("generator timeout")

	// ErrGeneratorUnreachable indicates the generator could not be contacted
	// or answered with a transient server error. Retried with backoff.
	ErrGeneratorUnreachable = errors.New("generator unreachable")

	// ErrGeneratorRejected indicates the generator refused the request
	// (bad credentials, unknown model, invalid request). Not retried.
	ErrGeneratorRejected = errors.New("generator rejected request")

	// ErrRateLimited indicates the provider throttled the request (HTTP 429).
	// Always wrapped together with ErrGeneratorUnreachable.
	ErrRateLimited = errors.New("rate limited")

	// ErrPoolClosed indicates the generator pool has been closed.
	ErrPoolClosed = errors.New("generator pool closed")
)

// IsRetryableGeneratorError reports whether err should trigger another generation attempt.
func IsRetryableGeneratorError(err error) bool {
	return errors.Is(err, ErrGeneratorTimeout) || errors.Is(err, ErrGeneratorUnreachable)
}
