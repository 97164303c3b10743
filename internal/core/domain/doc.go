// Package domain defines the core business entities for clause.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document and Chunk: ingested source text with rune offsets
//   - Fragment: a retrieved span of source text with a similarity score
//   - EvidenceSet: the bounded, ordered fragments handed to the generator
//   - StructuredAnswer: the validated, decision-ready pipeline output
//   - ValidationOutcome: either a StructuredAnswer or a FailureRecord
//   - Config: immutable pipeline configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
