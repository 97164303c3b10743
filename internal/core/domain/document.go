package domain

import "time"

// Document represents an ingested source document.
// It is the canonical representation after normalisation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URI is the original location (usually a file path).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	// Chunk offsets index into this text in runes.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last ingested.
	UpdatedAt time.Time
}

// Chunk represents a retrievable unit within a document.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// StartOffset is the rune offset of the first character in Document.Content.
	StartOffset int

	// EndOffset is the rune offset one past the last character.
	EndOffset int

	// Embedding is the vector representation for semantic search.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// Range returns the chunk's offset range within its document.
func (c *Chunk) Range() OffsetRange {
	return OffsetRange{Start: c.StartOffset, End: c.EndOffset}
}
