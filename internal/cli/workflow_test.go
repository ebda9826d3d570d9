package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mkarlsen/subvet/internal/waiver"
)

func TestPolicyCheckCommand(t *testing.T) {
	tmp := t.TempDir()
	policyPath := filepath.Join(tmp, "policy.yaml")
	policy := `version: "1"
approval:
  quality_threshold: 90
`
	if err := os.WriteFile(policyPath, []byte(policy), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runRoot(t, "policy", "check", "--path", policyPath)
	if err != nil {
		t.Fatalf("policy check failed: %v\noutput: %s", err, out)
	}
}

func TestPolicyCheckCommandRejectsBadThreshold(t *testing.T) {
	tmp := t.TempDir()
	policyPath := filepath.Join(tmp, "policy.yaml")
	policy := `version: "1"
approval:
  quality_threshold: 180
`
	if err := os.WriteFile(policyPath, []byte(policy), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runRoot(t, "policy", "check", "--path", policyPath); err == nil {
		t.Fatal("expected policy check to fail")
	}
}

func TestPolicyInitCommandWritesValidPolicy(t *testing.T) {
	tmp := t.TempDir()
	policyPath := filepath.Join(tmp, "policy.yaml")

	out, err := runRoot(t, "policy", "init", "--path", policyPath)
	if err != nil {
		t.Fatalf("policy init failed: %v\noutput: %s", err, out)
	}
	if _, err := runRoot(t, "policy", "check", "--path", policyPath); err != nil {
		t.Fatalf("generated policy does not validate: %v", err)
	}
}

func TestRulesTestCommand(t *testing.T) {
	out, err := runRoot(t, "rules", "test")
	if err != nil {
		t.Fatalf("rules test failed: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "fail=0") {
		t.Fatalf("expected zero failures: %s", out)
	}
}

func TestRulesListCommand(t *testing.T) {
	out, err := runRoot(t, "rules", "list")
	if err != nil {
		t.Fatalf("rules list failed: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "eval-call") {
		t.Fatalf("expected bundled rule in listing: %s", out)
	}
}

func TestWaiverAddAndListCommands(t *testing.T) {
	tmp := t.TempDir()
	waiversPath := filepath.Join(tmp, "waivers.json")

	out, err := runRoot(t, "waiver", "add",
		"--waivers", waiversPath,
		"--rule", "insecure-url",
		"--match", "http://legacy.example/docs",
		"--reason", "legacy docs host",
		"--by", "alice",
	)
	if err != nil {
		t.Fatalf("waiver add failed: %v\noutput: %s", err, out)
	}

	f, err := waiver.Load(waiversPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Entries) != 1 || f.Entries[0].RuleID != "insecure-url" {
		t.Fatalf("unexpected waiver file: %+v", f)
	}

	out, err = runRoot(t, "waiver", "list", "--waivers", waiversPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "insecure-url") {
		t.Fatalf("expected waiver in listing: %s", out)
	}
}

func TestIndexBuildCommand(t *testing.T) {
	tmp := t.TempDir()
	contentDir := filepath.Join(tmp, "library")
	if err := os.MkdirAll(contentDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeSubmission(t, contentDir, "travel-guide.md", cleanSubmission)
	outPath := filepath.Join(tmp, "index.json")

	out, err := runRoot(t, "index", "build",
		"--content", contentDir,
		"--output", outPath,
		"--policy", filepath.Join(tmp, "missing-policy.yaml"),
	)
	if err != nil {
		t.Fatalf("index build failed: %v\noutput: %s", err, out)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "travel-guide") {
		t.Fatalf("index missing entry: %s", data)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runRoot(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, BuildVersion) {
		t.Fatalf("unexpected version output: %s", out)
	}
}
