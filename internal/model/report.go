package model

import "time"

// Decision values produced by the decision engine.
const (
	DecisionAutoApprove  = "auto-approve"
	DecisionManualReview = "manual-review"
	DecisionReject       = "reject"
)

// ValidationReport is the top-level JSON output payload for one submission.
type ValidationReport struct {
	Schema      string            `json:"$schema,omitempty"`
	ID          string            `json:"id"`
	Submission  SubmissionInfo    `json:"submission"`
	Scan        ScanResult        `json:"scan"`
	Quality     QualityReport     `json:"quality"`
	Integration IntegrationReport `json:"integration"`
	Verdict     Verdict           `json:"verdict"`
	Metadata    Metadata          `json:"metadata"`
}

type SubmissionInfo struct {
	Path       string `json:"path,omitempty"`
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Category   string `json:"category"`
}

type SecurityIssue struct {
	RuleID     string `json:"rule_id"`
	RuleName   string `json:"rule_name"`
	Severity   string `json:"severity"`
	Category   string `json:"category"`
	CWE        string `json:"cwe,omitempty"`
	Line       int    `json:"line"`
	Matched    string `json:"matched"`
	Context    string `json:"context"`
	Mitigation string `json:"mitigation"`
}

type ScanResult struct {
	Issues     []SecurityIssue `json:"issues"`
	RiskLevel  string          `json:"risk_level"`
	Confidence int             `json:"confidence"`
}

type QualityReport struct {
	Dimensions map[string]DimensionScore `json:"dimensions"`
	TotalScore int                       `json:"total_score"`
	Grade      string                    `json:"grade"`
	Strengths  []string                  `json:"strengths"`
	Weaknesses []string                  `json:"weaknesses"`
}

type DimensionScore struct {
	Score  int      `json:"score"`
	Weight int      `json:"weight"`
	Notes  []string `json:"notes,omitempty"`
}

type IntegrationReport struct {
	Loaded            bool     `json:"loaded"`
	SchemaValid       bool     `json:"schema_valid"`
	Violations        []string `json:"violations"`
	DuplicateFound    bool     `json:"duplicate_found"`
	Conflicts         []string `json:"conflicts"`
	UnresolvedRefs    []string `json:"unresolved_refs"`
	CrossRefsResolved bool     `json:"cross_refs_resolved"`
}

// Verdict is always derived from the four analyzer reports, never persisted
// as a source of truth.
type Verdict struct {
	Decision        string   `json:"decision"`
	Confidence      int      `json:"confidence"`
	BlockingReasons []string `json:"blocking_reasons"`
	CriticalPath    bool     `json:"critical_path"`
}

type Metadata struct {
	Tool           string         `json:"tool"`
	Version        string         `json:"version"`
	ValidatedAt    time.Time      `json:"validated_at"`
	DurationMS     int64          `json:"duration_ms"`
	RulesLoaded    int            `json:"rules_loaded"`
	IndexEntries   int            `json:"index_entries"`
	PolicyFile     string         `json:"policy_file,omitempty"`
	SeverityCounts map[string]int `json:"severity_counts"`
}
