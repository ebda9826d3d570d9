package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/mkarlsen/subvet/internal/model"
	"github.com/mkarlsen/subvet/internal/quality"
)

func Write(report model.ValidationReport, format string, w io.Writer) error {
	switch strings.ToLower(format) {
	case "human":
		writeHuman(report, w)
		return nil
	case "json":
		return writeJSON(report, w)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func writeHuman(report model.ValidationReport, w io.Writer) {
	fmt.Fprintf(w, "subvet validation result for %s\n", report.Submission.Identifier)
	fmt.Fprintln(w, "--------------------------------")
	fmt.Fprintf(w, "%s %s (confidence %d)\n", decisionBadge(report.Verdict.Decision), strings.ToUpper(report.Verdict.Decision), report.Verdict.Confidence)
	for _, reason := range report.Verdict.BlockingReasons {
		fmt.Fprintf(w, "  - %s\n", reason)
	}
	fmt.Fprintln(w)

	if len(report.Scan.Issues) > 0 {
		fmt.Fprintf(w, "Security: %d issue(s), risk %s\n", len(report.Scan.Issues), strings.ToUpper(report.Scan.RiskLevel))
		tbl := tablewriter.NewWriter(w)
		tbl.SetHeader([]string{"Severity", "Rule", "Line", "Match"})
		for _, issue := range report.Scan.Issues {
			tbl.Append([]string{
				strings.ToUpper(issue.Severity),
				issue.RuleID,
				strconv.Itoa(issue.Line),
				truncate(issue.Matched, 48),
			})
		}
		tbl.Render()
	} else {
		fmt.Fprintf(w, "Security: no issues, risk %s\n", strings.ToUpper(report.Scan.RiskLevel))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Quality: %d/100 (grade %s)\n", report.Quality.TotalScore, report.Quality.Grade)
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Dimension", "Score", "Weight"})
	for _, name := range quality.DimensionNames() {
		dim := report.Quality.Dimensions[name]
		tbl.Append([]string{name, strconv.Itoa(dim.Score), strconv.Itoa(dim.Weight)})
	}
	tbl.Render()
	for _, weak := range report.Quality.Weaknesses {
		fmt.Fprintf(w, "  weak: %s\n", weak)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Integration: schema_valid=%t duplicate=%t conflicts=%d unresolved_refs=%d\n",
		report.Integration.SchemaValid,
		report.Integration.DuplicateFound,
		len(report.Integration.Conflicts),
		len(report.Integration.UnresolvedRefs),
	)
	for _, v := range report.Integration.Violations {
		fmt.Fprintf(w, "  violation: %s\n", v)
	}

	fmt.Fprintf(w, "\nSummary: rules=%d index=%d duration=%dms\n",
		report.Metadata.RulesLoaded,
		report.Metadata.IndexEntries,
		report.Metadata.DurationMS,
	)
	if len(report.Metadata.SeverityCounts) > 0 {
		fmt.Fprintf(w, "  Severity: critical=%d high=%d medium=%d low=%d\n",
			report.Metadata.SeverityCounts["critical"],
			report.Metadata.SeverityCounts["high"],
			report.Metadata.SeverityCounts["medium"],
			report.Metadata.SeverityCounts["low"],
		)
	}
}

func writeJSON(report model.ValidationReport, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func decisionBadge(decision string) string {
	switch decision {
	case model.DecisionAutoApprove:
		return "[PASS]"
	case model.DecisionManualReview:
		return "[REVIEW]"
	default:
		return "[REJECT]"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
