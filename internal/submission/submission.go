package submission

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Metadata is the typed view of a submission's front-matter header. Fields
// holds the raw mapping for schema checks over unknown keys.
type Metadata struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Category    string   `yaml:"category"`
	Description string   `yaml:"description"`
	Author      string   `yaml:"author"`
	Tags        []string `yaml:"tags"`
	Requires    []string `yaml:"requires"`
}

// Document is one parsed submission: the raw text, the stripped body, and the
// parsed header. Analyzers treat it as read-only.
type Document struct {
	Path   string
	Raw    string
	Body   string
	Meta   Metadata
	Fields map[string]any
}

// Parse splits a submission into front matter and body. A missing or
// unparseable header is an input error surfaced to the caller, never a
// downgraded result.
func Parse(raw []byte) (Document, error) {
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	doc := Document{Raw: text}

	rest, ok := strings.CutPrefix(text, delimiter+"\n")
	if !ok {
		return Document{}, fmt.Errorf("missing front-matter header")
	}
	header, body, ok := strings.Cut(rest, "\n"+delimiter)
	if !ok {
		return Document{}, fmt.Errorf("unterminated front-matter header")
	}

	if err := yaml.Unmarshal([]byte(header), &doc.Meta); err != nil {
		return Document{}, fmt.Errorf("parse metadata: %w", err)
	}
	doc.Fields = map[string]any{}
	if err := yaml.Unmarshal([]byte(header), &doc.Fields); err != nil {
		return Document{}, fmt.Errorf("parse metadata: %w", err)
	}

	doc.Body = strings.TrimPrefix(strings.TrimPrefix(body, "\n"), "\n")
	return doc, nil
}

// Load reads and parses a submission file.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	doc, err := Parse(data)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}
