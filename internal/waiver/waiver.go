package waiver

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mkarlsen/subvet/internal/model"
)

// File records security findings a maintainer has reviewed and accepted.
// Waived findings are suppressed before the decision engine runs, so a
// once-reviewed false positive does not block every resubmission.
type File struct {
	Version     string  `json:"version"`
	GeneratedAt string  `json:"generated_at"`
	Entries     []Entry `json:"entries"`
}

type Entry struct {
	RuleID    string `json:"rule_id"`
	MatchHash string `json:"match_hash"`
	Reason    string `json:"reason"`
	AddedAt   string `json:"added_at"`
	AddedBy   string `json:"added_by"`
}

// ComputeMatchHash fingerprints a finding by its matched text, so waivers
// survive line-number drift between revisions.
func ComputeMatchHash(matched string) string {
	sum := sha256.Sum256([]byte(matched))
	return "sha256:" + hex.EncodeToString(sum[:])
}

func Empty() File {
	return File{Version: "1", Entries: []Entry{}}
}

func Load(path string) (File, error) {
	if path == "" {
		return Empty(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Empty(), nil
		}
		return File{}, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse waivers: %w", err)
	}
	if f.Version == "" {
		f.Version = "1"
	}
	return f, nil
}

func Save(path string, f File) error {
	if path == "" {
		return fmt.Errorf("waiver path required")
	}
	if f.Version == "" {
		f.Version = "1"
	}
	f.GeneratedAt = time.Now().UTC().Format(time.RFC3339)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func IsWaived(f File, issue model.SecurityIssue) bool {
	hash := ComputeMatchHash(issue.Matched)
	for _, e := range f.Entries {
		if e.RuleID == issue.RuleID && e.MatchHash == hash {
			return true
		}
	}
	return false
}

// Filter drops waived issues, preserving order.
func Filter(f File, issues []model.SecurityIssue) []model.SecurityIssue {
	kept := make([]model.SecurityIssue, 0, len(issues))
	for _, issue := range issues {
		if IsWaived(f, issue) {
			continue
		}
		kept = append(kept, issue)
	}
	return kept
}

// Add appends or refreshes a waiver entry keyed by rule id and match hash.
func Add(f File, ruleID string, matched string, reason string, by string) File {
	out := f
	if out.Version == "" {
		out.Version = "1"
	}
	hash := ComputeMatchHash(matched)
	now := time.Now().UTC().Format(time.RFC3339)
	entry := Entry{RuleID: ruleID, MatchHash: hash, Reason: reason, AddedAt: now, AddedBy: by}
	for i, e := range out.Entries {
		if e.RuleID == ruleID && e.MatchHash == hash {
			out.Entries[i] = entry
			return out
		}
	}
	out.Entries = append(out.Entries, entry)
	return out
}
