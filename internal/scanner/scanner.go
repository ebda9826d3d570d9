package scanner

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mkarlsen/subvet/internal/config"
	"github.com/mkarlsen/subvet/internal/model"
	"github.com/mkarlsen/subvet/internal/rules"
	"github.com/mkarlsen/subvet/internal/severity"
)

// ErrContentTooLarge marks oversized input. Oversized submissions are
// rejected outright, never truncated and scanned.
var ErrContentTooLarge = errors.New("content exceeds maximum size")

type Scanner struct {
	rules          []rules.Rule
	maxContentSize int
	contextRadius  int
	allow          []*regexp.Regexp
}

// New builds a scanner over an already-loaded corpus. Allowlist patterns from
// the policy are compiled here so a broken pattern fails at startup, not
// mid-scan.
func New(corpus []rules.Rule, policy config.Policy) (*Scanner, error) {
	s := &Scanner{
		rules:          corpus,
		maxContentSize: policy.Limits.MaxContentSize,
		contextRadius:  policy.Scan.ContextRadius,
	}
	for _, p := range policy.Allowlist.Patterns {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			return nil, fmt.Errorf("compile allowlist pattern %q: %w", p.Regex, err)
		}
		s.allow = append(s.allow, re)
	}
	return s, nil
}

// Scan evaluates every corpus rule against the full text. Matches are not
// deduplicated: a rule matching N times yields N issues, which feeds the
// density escalation in Summarize.
func (s *Scanner) Scan(text string) (model.ScanResult, error) {
	// The size limit is in characters, so multi-byte text is not penalized.
	if n := utf8.RuneCountInString(text); n > s.maxContentSize {
		return model.ScanResult{}, fmt.Errorf("%w: %d > %d characters", ErrContentTooLarge, n, s.maxContentSize)
	}

	lineStarts := buildLineIndex(text)
	issues := make([]model.SecurityIssue, 0)

	for _, rule := range s.rules {
		for _, loc := range rule.Regex.FindAllStringIndex(text, -1) {
			lineNo, lineStart, lineEnd := locate(lineStarts, text, loc[0])
			line := text[lineStart:lineEnd]
			if rules.Excluded(rule, line) {
				continue
			}
			matched := text[loc[0]:loc[1]]
			if s.allowlisted(matched, line) {
				continue
			}
			issues = append(issues, model.SecurityIssue{
				RuleID:     rule.ID,
				RuleName:   rule.Name,
				Severity:   rule.Severity,
				Category:   rule.Category,
				CWE:        rule.CWE,
				Line:       lineNo,
				Matched:    matched,
				Context:    s.context(text, loc[0], loc[1], lineStart, lineEnd),
				Mitigation: rule.Mitigation,
			})
		}
	}

	return Summarize(issues), nil
}

// Summarize derives the risk level and scan confidence for a set of issues.
// Exposed separately so callers can recompute after waiver filtering.
func Summarize(issues []model.SecurityIssue) model.ScanResult {
	return model.ScanResult{
		Issues:     issues,
		RiskLevel:  deriveRisk(issues),
		Confidence: scanConfidence(issues),
	}
}

// CountBySeverity tallies issues per severity level.
func CountBySeverity(issues []model.SecurityIssue) map[string]int {
	out := map[string]int{
		severity.Critical: 0,
		severity.High:     0,
		severity.Medium:   0,
		severity.Low:      0,
	}
	for _, issue := range issues {
		out[issue.Severity]++
	}
	return out
}

// deriveRisk applies the escalation rules: any critical match is CRITICAL,
// high-severity matches escalate on density (three or more) or presence,
// medium on presence. Medium has no density escalation on purpose.
func deriveRisk(issues []model.SecurityIssue) string {
	counts := CountBySeverity(issues)
	switch {
	case counts[severity.Critical] >= 1:
		return severity.Critical
	case counts[severity.High] >= 1:
		return severity.High
	case counts[severity.Medium] >= 1:
		return severity.Medium
	default:
		return severity.Low
	}
}

func scanConfidence(issues []model.SecurityIssue) int {
	penalty := 0
	for _, issue := range issues {
		switch issue.Severity {
		case severity.Critical:
			penalty += 25
		case severity.High:
			penalty += 10
		case severity.Medium:
			penalty += 4
		default:
			penalty += 1
		}
	}
	c := 100 - penalty
	if c < 0 {
		c = 0
	}
	return c
}

func (s *Scanner) allowlisted(matched string, line string) bool {
	for _, re := range s.allow {
		if re.MatchString(matched) || re.MatchString(line) {
			return true
		}
	}
	return false
}

// context returns a window of at most contextRadius characters on each side
// of the match, clipped to the match's line.
func (s *Scanner) context(text string, start, end, lineStart, lineEnd int) string {
	from := start - s.contextRadius
	if from < lineStart {
		from = lineStart
	}
	to := end + s.contextRadius
	if to > lineEnd {
		to = lineEnd
	}
	return strings.TrimSpace(text[from:to])
}

// buildLineIndex records the byte offset of every line start so line numbers
// come from a binary search instead of rescanning the text per match.
func buildLineIndex(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// locate maps a byte offset to its 1-based line number and line bounds.
func locate(lineStarts []int, text string, offset int) (lineNo, lineStart, lineEnd int) {
	idx := sort.SearchInts(lineStarts, offset+1) - 1
	lineStart = lineStarts[idx]
	lineEnd = len(text)
	if idx+1 < len(lineStarts) {
		lineEnd = lineStarts[idx+1] - 1
	}
	return idx + 1, lineStart, lineEnd
}
