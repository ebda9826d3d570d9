package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/mkarlsen/subvet/internal/severity"
)

type Policy struct {
	Version   string     `yaml:"version"`
	Limits    Limits     `yaml:"limits"`
	Approval  Approval   `yaml:"approval"`
	Scan      ScanPolicy `yaml:"scan"`
	Allowlist Allowlist  `yaml:"allowlist"`
}

type Limits struct {
	MaxContentSize int `yaml:"max_content_size" env:"SUBVET_MAX_CONTENT_SIZE"`
}

type Approval struct {
	QualityThreshold  int    `yaml:"quality_threshold" env:"SUBVET_QUALITY_THRESHOLD"`
	MaxHighRiskIssues int    `yaml:"max_high_risk_issues" env:"SUBVET_MAX_HIGH_RISK_ISSUES"`
	MaxRiskLevel      string `yaml:"max_risk_level" env:"SUBVET_MAX_RISK_LEVEL"`
}

type ScanPolicy struct {
	ContextRadius int      `yaml:"context_radius" env:"SUBVET_CONTEXT_RADIUS"`
	ExcludePaths  []string `yaml:"exclude_paths"`
}

type Allowlist struct {
	Patterns []AllowPattern `yaml:"patterns"`
}

type AllowPattern struct {
	Regex  string `yaml:"regex"`
	Reason string `yaml:"reason"`
}

func DefaultPolicy() Policy {
	return Policy{
		Version: "1",
		Limits: Limits{
			MaxContentSize: 50000,
		},
		Approval: Approval{
			QualityThreshold:  85,
			MaxHighRiskIssues: 1,
			MaxRiskLevel:      severity.Low,
		},
		Scan: ScanPolicy{
			ContextRadius: 40,
			ExcludePaths:  []string{".git/**", "node_modules/**", "_drafts/**"},
		},
	}
}

// LoadPolicy reads the policy file, fills defaults, and applies SUBVET_*
// environment overrides. A missing file yields the defaults; an invalid file
// or invalid tunable refuses to start.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Policy{}, err
			}
		} else if err := yaml.Unmarshal(data, &policy); err != nil {
			return Policy{}, fmt.Errorf("parse policy: %w", err)
		}
	}

	if err := env.Parse(&policy); err != nil {
		return Policy{}, fmt.Errorf("apply environment overrides: %w", err)
	}

	if policy.Version == "" {
		policy.Version = "1"
	}
	if policy.Limits.MaxContentSize <= 0 {
		policy.Limits.MaxContentSize = DefaultPolicy().Limits.MaxContentSize
	}
	if policy.Scan.ContextRadius <= 0 {
		policy.Scan.ContextRadius = DefaultPolicy().Scan.ContextRadius
	}
	if policy.Approval.MaxRiskLevel == "" {
		policy.Approval.MaxRiskLevel = severity.Low
	}

	if err := validate(policy); err != nil {
		return Policy{}, err
	}
	return policy, nil
}

func validate(policy Policy) error {
	if policy.Version != "1" {
		return fmt.Errorf("unsupported policy version: %s", policy.Version)
	}
	if policy.Approval.QualityThreshold < 0 || policy.Approval.QualityThreshold > 100 {
		return fmt.Errorf("approval.quality_threshold must be within [0,100]: %d", policy.Approval.QualityThreshold)
	}
	if policy.Approval.MaxHighRiskIssues < 0 {
		return fmt.Errorf("approval.max_high_risk_issues must not be negative: %d", policy.Approval.MaxHighRiskIssues)
	}
	if _, err := severity.Normalize(policy.Approval.MaxRiskLevel); err != nil {
		return fmt.Errorf("approval.max_risk_level: %w", err)
	}
	return nil
}

// ValidatePolicy backs the `policy check` command.
func ValidatePolicy(path string) error {
	_, err := LoadPolicy(path)
	return err
}
