package decision

import (
	"fmt"

	"github.com/mkarlsen/subvet/internal/config"
	"github.com/mkarlsen/subvet/internal/model"
	"github.com/mkarlsen/subvet/internal/severity"
)

// Inputs are the four analyzer reports plus the approval tunables. The
// verdict is a pure function of these values.
type Inputs struct {
	Scan        model.ScanResult
	Quality     model.QualityReport
	Integration model.IntegrationReport
	Approval    config.Approval
}

// engineRule is one predicate/outcome pair. Rules are evaluated top to
// bottom; the first match wins. Keeping them as an explicit ordered slice
// makes reordering or inserting a rule a local change.
type engineRule struct {
	name    string
	matches func(Inputs) bool
	verdict func(Inputs) model.Verdict
}

var engine = []engineRule{
	{
		name: "critical-security",
		matches: func(in Inputs) bool {
			return in.Scan.RiskLevel == severity.Critical
		},
		verdict: func(in Inputs) model.Verdict {
			reasons := []string{"critical security pattern detected"}
			for _, issue := range in.Scan.Issues {
				if issue.Severity == severity.Critical {
					reasons = append(reasons, fmt.Sprintf("%s at line %d: %s", issue.RuleName, issue.Line, issue.Mitigation))
				}
			}
			return model.Verdict{
				Decision:        model.DecisionReject,
				Confidence:      100,
				BlockingReasons: reasons,
				CriticalPath:    true,
			}
		},
	},
	{
		name: "schema-invalid",
		matches: func(in Inputs) bool {
			return !in.Integration.SchemaValid
		},
		verdict: func(in Inputs) model.Verdict {
			reasons := []string{"schema validation failed"}
			reasons = append(reasons, in.Integration.Violations...)
			return model.Verdict{
				Decision:        model.DecisionReject,
				Confidence:      100,
				BlockingReasons: reasons,
			}
		},
	},
	{
		name: "duplicate-identifier",
		matches: func(in Inputs) bool {
			return in.Integration.DuplicateFound
		},
		verdict: func(in Inputs) model.Verdict {
			return model.Verdict{
				Decision:        model.DecisionReject,
				Confidence:      100,
				BlockingReasons: []string{"duplicate identifier"},
			}
		},
	},
	{
		name: "review-criteria",
		matches: func(in Inputs) bool {
			return len(reviewReasons(in)) > 0
		},
		verdict: func(in Inputs) model.Verdict {
			return model.Verdict{
				Decision:        model.DecisionManualReview,
				Confidence:      confidence(in),
				BlockingReasons: reviewReasons(in),
			}
		},
	},
	{
		name: "auto-approve",
		matches: func(in Inputs) bool {
			return true
		},
		verdict: func(in Inputs) model.Verdict {
			return model.Verdict{
				Decision:        model.DecisionAutoApprove,
				Confidence:      confidence(in),
				BlockingReasons: []string{},
			}
		},
	},
}

// Decide evaluates the rule list in order and returns the first matching
// outcome. Every non-approval verdict carries at least one concrete reason.
func Decide(in Inputs) model.Verdict {
	for _, rule := range engine {
		if rule.matches(in) {
			return rule.verdict(in)
		}
	}
	// Unreachable: the final rule always matches.
	return model.Verdict{Decision: model.DecisionManualReview, Confidence: 0, BlockingReasons: []string{"no decision rule matched"}}
}

// reviewReasons lists every failed auto-approval criterion, not just the
// first, so a reviewer sees the complete picture.
func reviewReasons(in Inputs) []string {
	reasons := make([]string, 0)
	if in.Quality.TotalScore < in.Approval.QualityThreshold {
		reasons = append(reasons, fmt.Sprintf("quality score %d below approval threshold %d", in.Quality.TotalScore, in.Approval.QualityThreshold))
	}
	if severity.Above(in.Scan.RiskLevel, in.Approval.MaxRiskLevel) {
		reasons = append(reasons, fmt.Sprintf("risk level %s exceeds %s", in.Scan.RiskLevel, in.Approval.MaxRiskLevel))
	}
	if n := highCount(in.Scan); n > in.Approval.MaxHighRiskIssues {
		reasons = append(reasons, fmt.Sprintf("%d high-severity issues exceed the limit of %d", n, in.Approval.MaxHighRiskIssues))
	}
	if len(in.Integration.Conflicts) > 0 {
		reasons = append(reasons, fmt.Sprintf("name conflicts with existing entries: %v", in.Integration.Conflicts))
	}
	if !in.Integration.CrossRefsResolved {
		reasons = append(reasons, fmt.Sprintf("unresolved references: %v", in.Integration.UnresolvedRefs))
	}
	return reasons
}

func highCount(scan model.ScanResult) int {
	n := 0
	for _, issue := range scan.Issues {
		if issue.Severity == severity.High {
			n++
		}
	}
	return n
}

// confidence blends the analyzer outputs for the non-rejection paths. It is
// advisory only and never changes the decision.
func confidence(in Inputs) int {
	c := 100
	if shortfall := in.Approval.QualityThreshold - in.Quality.TotalScore; shortfall > 0 {
		c -= 2 * shortfall
	}
	if in.Scan.RiskLevel == severity.Medium {
		c -= 15
	}
	c -= 5 * (len(in.Integration.Conflicts) + len(in.Integration.UnresolvedRefs))
	if c < 0 {
		c = 0
	}
	if c > 100 {
		c = 100
	}
	return c
}
