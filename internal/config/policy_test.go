package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPolicyDefaultsWhenFileMissing(t *testing.T) {
	policy, err := LoadPolicy(filepath.Join(t.TempDir(), "policy.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if policy.Limits.MaxContentSize != 50000 {
		t.Fatalf("unexpected max content size: %d", policy.Limits.MaxContentSize)
	}
	if policy.Approval.QualityThreshold != 85 {
		t.Fatalf("unexpected quality threshold: %d", policy.Approval.QualityThreshold)
	}
	if policy.Approval.MaxHighRiskIssues != 1 {
		t.Fatalf("unexpected max high risk issues: %d", policy.Approval.MaxHighRiskIssues)
	}
	if policy.Approval.MaxRiskLevel != "low" {
		t.Fatalf("unexpected max risk level: %s", policy.Approval.MaxRiskLevel)
	}
}

func TestLoadPolicyReadsFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "policy.yaml")
	content := `version: "1"
limits:
  max_content_size: 10000
approval:
  quality_threshold: 90
  max_risk_level: medium
allowlist:
  patterns:
    - regex: 'http://internal\.example'
      reason: internal mirror
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	policy, err := LoadPolicy(path)
	if err != nil {
		t.Fatal(err)
	}
	if policy.Limits.MaxContentSize != 10000 {
		t.Fatalf("unexpected max content size: %d", policy.Limits.MaxContentSize)
	}
	if policy.Approval.QualityThreshold != 90 {
		t.Fatalf("unexpected threshold: %d", policy.Approval.QualityThreshold)
	}
	if len(policy.Allowlist.Patterns) != 1 {
		t.Fatalf("unexpected allowlist: %+v", policy.Allowlist)
	}
}

func TestLoadPolicyEnvOverride(t *testing.T) {
	t.Setenv("SUBVET_QUALITY_THRESHOLD", "70")
	t.Setenv("SUBVET_MAX_RISK_LEVEL", "medium")
	policy, err := LoadPolicy("")
	if err != nil {
		t.Fatal(err)
	}
	if policy.Approval.QualityThreshold != 70 {
		t.Fatalf("env override not applied: %d", policy.Approval.QualityThreshold)
	}
	if policy.Approval.MaxRiskLevel != "medium" {
		t.Fatalf("env override not applied: %s", policy.Approval.MaxRiskLevel)
	}
}

func TestLoadPolicyRejectsInvalidRiskLevel(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "policy.yaml")
	content := `version: "1"
approval:
  max_risk_level: severe
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPolicy(path); err == nil {
		t.Fatal("expected error for invalid risk level")
	}
}

func TestLoadPolicyRejectsBadThreshold(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "policy.yaml")
	if err := os.WriteFile(path, []byte("version: \"1\"\napproval:\n  quality_threshold: 250\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPolicy(path); err == nil {
		t.Fatal("expected error for out-of-range threshold")
	}
}
