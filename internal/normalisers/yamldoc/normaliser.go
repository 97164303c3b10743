// Package yamldoc normalises structured YAML documents, such as benefit
// schedules, into one "path: value" line per scalar.
package yamldoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/clause/internal/core/domain"
	"github.com/custodia-labs/clause/internal/core/ports/driven"
	"github.com/custodia-labs/clause/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles YAML documents.
type Normaliser struct{}

// New creates a new YAML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/yaml", "application/x-yaml", "text/yaml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 60
}

// Normalise flattens every YAML document in the stream into readable lines.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	var lines []string
	title := ""
	dec := yaml.NewDecoder(bytes.NewReader(raw.Content))
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: parse yaml %s: %w", domain.ErrInvalidInput, raw.URI, err)
		}
		if title == "" {
			title = findTitle(&node)
		}
		lines = flatten(&node, "", lines)
	}

	if title == "" {
		title = normalisers.TitleFromURI(raw.URI)
	}
	now := time.Now()

	doc := domain.Document{
		ID:        normalisers.DocumentID(raw.URI),
		URI:       raw.URI,
		Title:     title,
		Content:   strings.Join(lines, "\n"),
		Metadata:  normalisers.CopyMetadata(raw.Metadata),
		CreatedAt: now,
		UpdatedAt: now,
	}
	doc.Metadata["mime_type"] = raw.MIMEType
	doc.Metadata["format"] = "yaml"

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// flatten appends one line per scalar in node, keyed by its dotted path.
func flatten(node *yaml.Node, path string, lines []string) []string {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, c := range node.Content {
			lines = flatten(c, path, lines)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			if path != "" {
				key = path + "." + key
			}
			lines = flatten(node.Content[i+1], key, lines)
		}
	case yaml.SequenceNode:
		for i, c := range node.Content {
			lines = flatten(c, path+"["+strconv.Itoa(i)+"]", lines)
		}
	case yaml.AliasNode:
		if node.Alias != nil {
			lines = flatten(node.Alias, path, lines)
		}
	case yaml.ScalarNode:
		value := strings.TrimSpace(node.Value)
		if path == "" {
			lines = append(lines, value)
		} else {
			lines = append(lines, path+": "+value)
		}
	}
	return lines
}

// findTitle returns a top-level "title" or "name" scalar if present.
func findTitle(node *yaml.Node) string {
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return ""
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := strings.ToLower(node.Content[i].Value)
		val := node.Content[i+1]
		if (key == "title" || key == "name") && val.Kind == yaml.ScalarNode && val.Value != "" {
			return val.Value
		}
	}
	return ""
}
