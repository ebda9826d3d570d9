package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkarlsen/subvet/internal/config"
	"github.com/mkarlsen/subvet/internal/index"
	"github.com/mkarlsen/subvet/internal/pipeline"
	"github.com/mkarlsen/subvet/internal/rules"
	"github.com/mkarlsen/subvet/internal/waiver"
)

func resolveRulesDir(defaultDir string) (string, error) {
	if defaultDir == "" {
		defaultDir = "rules"
	}
	if info, err := os.Stat(defaultDir); err == nil && info.IsDir() && hasYAML(defaultDir) {
		return defaultDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	cur := cwd
	for {
		candidate := filepath.Join(cur, defaultDir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() && hasYAML(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	return "", fmt.Errorf("rules directory not found: %s", defaultDir)
}

func hasYAML(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			return true
		}
	}
	return false
}

// loadPipelineOptions assembles a full validation run from file paths. Any
// path may be empty or missing; the policy and waiver loaders fall back to
// defaults, and an absent index means an empty marketplace.
func loadPipelineOptions(rulesPath, policyPath, indexPath, waiversPath string) (pipeline.Options, error) {
	policy, err := config.LoadPolicy(policyPath)
	if err != nil {
		return pipeline.Options{}, err
	}

	rulesDir, err := resolveRulesDir("rules")
	if err != nil {
		return pipeline.Options{}, err
	}
	corpus, err := rules.Load(rulesDir, rulesPath)
	if err != nil {
		return pipeline.Options{}, err
	}

	ix := index.New(nil)
	if indexPath != "" {
		if _, err := os.Stat(indexPath); err == nil {
			ix, err = index.Load(indexPath)
			if err != nil {
				return pipeline.Options{}, err
			}
		}
	}

	waivers, err := waiver.Load(waiversPath)
	if err != nil {
		return pipeline.Options{}, err
	}

	return pipeline.Options{
		Policy:  policy,
		Rules:   corpus,
		Index:   ix,
		Waivers: waivers,
		Version: BuildVersion,
		Now:     time.Now().UTC(),
	}, nil
}

// runRuleTests executes every rule's bundled test cases. Rules with fewer
// than two positive or two negative cases count as failures outright.
func runRuleTests(defaultRulesDir string, customRulesPath string) (int, int, error) {
	loaded, err := rules.Load(defaultRulesDir, customRulesPath)
	if err != nil {
		return 0, 0, err
	}

	pass := 0
	fail := 0
	for _, r := range loaded {
		if len(r.Tests.Positive) < 2 || len(r.Tests.Negative) < 2 {
			fail++
			continue
		}

		for _, tc := range r.Tests.Positive {
			if rules.MatchLine(r, tc) {
				pass++
			} else {
				fail++
			}
		}
		for _, tc := range r.Tests.Negative {
			if rules.MatchLine(r, tc) {
				fail++
			} else {
				pass++
			}
		}
	}
	return pass, fail, nil
}

// collectSubmissionPaths expands a file or directory target into the list of
// markdown submissions to validate, in sorted walk order.
func collectSubmissionPaths(target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}

	var paths []string
	err = filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".md" || ext == ".markdown" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no submissions found under %s", target)
	}
	return paths, nil
}
