package index

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/willf/bloom"

	"github.com/mkarlsen/subvet/internal/submission"
)

// Entry is one published library item. The identifier is the identity key
// submissions are checked against; the name feeds conflict detection.
type Entry struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
}

type File struct {
	Version string  `json:"version"`
	Entries []Entry `json:"entries"`
}

// Index is the read-only content index for one validation run. It is never
// mutated after construction, so concurrent analyzers need no locking. A
// bloom filter fronts the identifier set for cheap negative lookups on large
// libraries.
type Index struct {
	entries map[string]Entry
	names   map[string][]string
	filter  *bloom.BloomFilter
}

func New(entries []Entry) *Index {
	n := uint(len(entries))
	if n < 64 {
		n = 64
	}
	ix := &Index{
		entries: make(map[string]Entry, len(entries)),
		names:   make(map[string][]string),
		filter:  bloom.NewWithEstimates(n, 0.01),
	}
	for _, e := range entries {
		ix.entries[e.Identifier] = e
		key := NormalizeName(e.Name)
		if key != "" {
			ix.names[key] = append(ix.names[key], e.Identifier)
		}
		ix.filter.AddString(e.Identifier)
	}
	for key := range ix.names {
		sort.Strings(ix.names[key])
	}
	return ix
}

// Load reads an index file produced by `subvet index build`.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	return New(f.Entries), nil
}

// BuildFromDir walks a content directory, parses the front matter of every
// markdown file not excluded by the globs, and collects index entries.
func BuildFromDir(dir string, excludes []string) ([]Entry, error) {
	entries := make([]Entry, 0)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext != ".md" && ext != ".markdown" {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, pattern := range excludes {
			if ok, err := doublestar.PathMatch(pattern, rel); err == nil && ok {
				return nil
			}
		}
		doc, err := submission.Load(path)
		if err != nil {
			return fmt.Errorf("index %s: %w", rel, err)
		}
		if doc.Meta.ID == "" {
			return fmt.Errorf("index %s: missing id", rel)
		}
		entries = append(entries, Entry{Identifier: doc.Meta.ID, Name: doc.Meta.Name})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Identifier < entries[j].Identifier })
	return entries, nil
}

func Save(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(File{Version: "1", Entries: entries}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Contains is the duplicate check: exact identifier match, case-sensitive.
// Fuzzy or case-insensitive matching is deliberately not done here.
func (ix *Index) Contains(identifier string) bool {
	if !ix.filter.TestString(identifier) {
		return false
	}
	_, ok := ix.entries[identifier]
	return ok
}

// ConflictsWith returns identifiers of existing entries whose normalized name
// collides with the given name but whose identifier differs.
func (ix *Index) ConflictsWith(name string, identifier string) []string {
	conflicts := make([]string, 0)
	for _, id := range ix.names[NormalizeName(name)] {
		if id != identifier {
			conflicts = append(conflicts, id)
		}
	}
	return conflicts
}

func (ix *Index) Len() int {
	return len(ix.entries)
}

// NormalizeName lowercases and strips everything but letters and digits, so
// "Code Reviewer" and "code-reviewer!" collide.
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
