package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/cloo-solutions/askai/internal/domain"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyDocument = errors.New("document is empty")
	ErrNotMapping    = errors.New("document is not a flat mapping of strings")
)

// ParseEntries decodes a flat phrase -> answer mapping, keeping document order.
// Duplicate keys are returned as-is; domain.NewKnowledgeBase resolves them.
func ParseEntries(r io.Reader, format Format) ([]domain.KnowledgeEntry, error) {
	switch format {
	case FormatYAML:
		return parseYAML(r)
	default:
		return parseJSON(r)
	}
}

func parseJSON(r io.Reader) ([]domain.KnowledgeEntry, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err == io.EOF {
		return nil, ErrEmptyDocument
	}
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotMapping
	}

	var entries []domain.KnowledgeEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		phrase, ok := keyTok.(string)
		if !ok {
			return nil, ErrNotMapping
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("invalid JSON value for %q: %w", phrase, err)
		}
		answer, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("value for %q: %w", phrase, ErrNotMapping)
		}
		entries = append(entries, domain.KnowledgeEntry{Phrase: phrase, Answer: answer})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("invalid JSON: trailing data after mapping")
	}

	return entries, nil
}

func parseYAML(r io.Reader) ([]domain.KnowledgeEntry, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, ErrEmptyDocument
		}
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, ErrEmptyDocument
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	entries := make([]domain.KnowledgeEntry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, ErrNotMapping
		}
		if value.Kind != yaml.ScalarNode || value.Tag == "!!null" {
			return nil, fmt.Errorf("value for %q: %w", key.Value, ErrNotMapping)
		}
		entries = append(entries, domain.KnowledgeEntry{Phrase: key.Value, Answer: value.Value})
	}

	return entries, nil
}
