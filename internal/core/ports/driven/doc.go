// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - LLMService: the generator producing raw answer text
//   - EmbeddingService: embeds queries and chunks
//   - VectorIndex: similarity search over chunk embeddings (the retrieval index)
//   - DocumentStore: document and chunk persistence
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - PromptStore: user-editable prompt templates. Without it, embedded defaults are used.
//   - OutcomeStore: query history. Without it, outcomes are not recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
