package domain

// RawDocument represents the bytes of a source file before normalisation.
type RawDocument struct {
	// URI is the original location (file path or a caller-supplied name).
	URI string

	// MIMEType is the content type (e.g., "text/markdown").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains caller-supplied key-value pairs.
	Metadata map[string]any
}
