package normalisers

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DocumentID derives a stable document ID from its URI, so re-ingesting a
// file replaces the previous copy.
func DocumentID(uri string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(uri)).String()
}

// TitleFromURI extracts a human-readable title from a URI.
func TitleFromURI(uri string) string {
	filename := filepath.Base(uri)

	// Remove the extension for a cleaner title
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// CopyMetadata creates a shallow copy of metadata. Never returns nil.
func CopyMetadata(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src)+2)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
