package domain

import "unicode/utf8"

// OffsetRange is a half-open [Start, End) span of rune offsets within a document.
type OffsetRange struct {
	Start int
	End   int
}

// Len returns the number of runes covered by the range.
func (r OffsetRange) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Intersect returns the number of runes shared by r and other.
func (r OffsetRange) Intersect(other OffsetRange) int {
	start := max(r.Start, other.Start)
	end := min(r.End, other.End)
	if end <= start {
		return 0
	}
	return end - start
}

// OverlapRatio returns the shared length divided by the shorter range's length.
// Zero-width ranges never overlap.
func (r OffsetRange) OverlapRatio(other OffsetRange) float64 {
	shorter := min(r.Len(), other.Len())
	if shorter == 0 {
		return 0
	}
	return float64(r.Intersect(other)) / float64(shorter)
}

// Fragment is a contiguous span of source text produced by retrieval.
// Fragments are values; nothing mutates them after retrieval.
type Fragment struct {
	// SourceDocumentID identifies the document the span was taken from.
	SourceDocumentID string

	// ChunkID identifies the stored chunk backing this fragment.
	ChunkID string

	// Offset is the span's location within the source document.
	Offset OffsetRange

	// Text is the raw text of the span.
	Text string

	// Score is the similarity to the query in [0, 1].
	Score float64

	// Embedding is the vector held by the index. Opaque to the core.
	Embedding []float32
}

// Length returns the fragment's text length in runes.
func (f Fragment) Length() int {
	return utf8.RuneCountInString(f.Text)
}
