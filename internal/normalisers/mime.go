package normalisers

import (
	"path/filepath"
	"strings"
)

// extensionMIMETypes maps file extensions to the MIME types normalisers handle.
var extensionMIMETypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".csv":      "text/csv",
	".json":     "application/json",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".yaml":     "application/yaml",
	".yml":      "application/yaml",
}

// MIMETypeForPath returns the MIME type for a file path based on its extension.
// The second return value is false for unknown extensions.
func MIMETypeForPath(path string) (string, bool) {
	mime, ok := extensionMIMETypes[strings.ToLower(filepath.Ext(path))]
	return mime, ok
}
