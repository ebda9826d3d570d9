package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mkarlsen/subvet/internal/severity"
)

// Categories a detection rule may declare. Loading fails closed on anything
// outside this set.
var categories = map[string]struct{}{
	"script-injection":     {},
	"prompt-injection":     {},
	"privilege-escalation": {},
	"data-exfiltration":    {},
	"xss":                  {},
	"obfuscation":          {},
	"other":                {},
}

type File struct {
	Rules []Rule `yaml:"rules"`
}

type Rule struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Severity    string        `yaml:"severity"`
	Category    string        `yaml:"category"`
	CWE         string        `yaml:"cwe"`
	Description string        `yaml:"description"`
	Mitigation  string        `yaml:"mitigation"`
	Detection   DetectionSpec `yaml:"detection"`
	Tests       RuleTests     `yaml:"tests"`

	Regex        *regexp.Regexp   `yaml:"-"`
	MustNotMatch []*regexp.Regexp `yaml:"-"`
}

type DetectionSpec struct {
	Regex        string   `yaml:"regex"`
	MustNotMatch []string `yaml:"must_not_match"`
}

type RuleTests struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// Load reads every YAML rule file under defaultDir, then merges rules from
// customPath on top (same id wins). The returned corpus is sorted by rule id
// so scan reports are deterministically ordered.
func Load(defaultDir string, customPath string) ([]Rule, error) {
	all := map[string]Rule{}

	defaults, err := loadFromPath(defaultDir)
	if err != nil {
		return nil, err
	}
	for _, r := range defaults {
		all[r.ID] = r
	}

	if customPath != "" {
		custom, err := loadFromPath(customPath)
		if err != nil {
			return nil, err
		}
		for _, r := range custom {
			all[r.ID] = r
		}
	}

	out := make([]Rule, 0, len(all))
	for _, r := range all {
		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func loadFromPath(path string) ([]Rule, error) {
	if path == "" {
		return nil, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat rules path: %w", err)
	}

	var files []string
	if info.IsDir() {
		err = filepath.WalkDir(path, func(p string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(d.Name()))
			if ext == ".yml" || ext == ".yaml" {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		files = []string{path}
	}

	sort.Strings(files)
	loaded := make([]Rule, 0)

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read rules file %s: %w", f, err)
		}

		var rf File
		if err := yaml.Unmarshal(data, &rf); err != nil {
			return nil, fmt.Errorf("parse rules file %s: %w", f, err)
		}

		for _, r := range rf.Rules {
			if err := compileRule(&r); err != nil {
				return nil, fmt.Errorf("invalid rule %s: %w", r.ID, err)
			}
			loaded = append(loaded, r)
		}
	}

	return loaded, nil
}

func compileRule(r *Rule) error {
	if r.ID == "" {
		return fmt.Errorf("missing rule id")
	}
	if r.Name == "" {
		r.Name = r.ID
	}
	if r.Severity == "" {
		r.Severity = severity.Medium
	}
	if _, err := severity.Normalize(r.Severity); err != nil {
		return err
	}
	if r.Category == "" {
		r.Category = "other"
	}
	if _, ok := categories[r.Category]; !ok {
		return fmt.Errorf("unknown category: %s", r.Category)
	}
	if r.Mitigation == "" {
		return fmt.Errorf("missing mitigation")
	}
	if r.Detection.Regex == "" {
		return fmt.Errorf("missing detection.regex")
	}

	re, err := regexp.Compile(r.Detection.Regex)
	if err != nil {
		return fmt.Errorf("compile detection regex: %w", err)
	}
	r.Regex = re

	for _, pattern := range r.Detection.MustNotMatch {
		if pattern == "" {
			continue
		}
		p, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("compile must_not_match regex: %w", err)
		}
		r.MustNotMatch = append(r.MustNotMatch, p)
	}

	return nil
}

// MatchLine reports whether a single line trips the rule, honoring the
// must_not_match guards. Used by the corpus self-tests.
func MatchLine(r Rule, line string) bool {
	if !r.Regex.MatchString(line) {
		return false
	}
	for _, re := range r.MustNotMatch {
		if re.MatchString(line) {
			return false
		}
	}
	return true
}

// Excluded reports whether a concrete match should be dropped because a
// must_not_match guard also fires on the surrounding line.
func Excluded(r Rule, line string) bool {
	for _, re := range r.MustNotMatch {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
