package integration

import (
	"fmt"
	"regexp"

	"github.com/mkarlsen/subvet/internal/index"
	"github.com/mkarlsen/subvet/internal/model"
	"github.com/mkarlsen/subvet/internal/submission"
)

var (
	slugRe    = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	versionRe = regexp.MustCompile(`^v?\d+\.\d+\.\d+$`)
)

var knownCategories = map[string]struct{}{
	"persona": {}, "skill": {}, "agent": {}, "prompt": {}, "template": {}, "tool": {},
}

const minDescriptionLength = 20

// Test loads the parsed document against the content index: schema
// conformance, duplicate identity, name conflicts, and cross-reference
// resolution. Every violation is collected; nothing fails fast.
func Test(doc submission.Document, ix *index.Index) model.IntegrationReport {
	report := model.IntegrationReport{
		Loaded:         true,
		Violations:     checkSchema(doc),
		Conflicts:      []string{},
		UnresolvedRefs: []string{},
	}
	report.SchemaValid = len(report.Violations) == 0

	report.DuplicateFound = ix.Contains(doc.Meta.ID)
	report.Conflicts = ix.ConflictsWith(doc.Meta.Name, doc.Meta.ID)

	for _, ref := range doc.Meta.Requires {
		if !ix.Contains(ref) {
			report.UnresolvedRefs = append(report.UnresolvedRefs, ref)
		}
	}
	report.CrossRefsResolved = len(report.UnresolvedRefs) == 0

	return report
}

func checkSchema(doc submission.Document) []string {
	violations := make([]string, 0)

	required := []string{"id", "name", "version", "description", "category"}
	for _, field := range required {
		v, ok := doc.Fields[field]
		if !ok || v == nil || fmt.Sprint(v) == "" {
			violations = append(violations, fmt.Sprintf("missing required field: %s", field))
		}
	}

	if doc.Meta.ID != "" && !slugRe.MatchString(doc.Meta.ID) {
		violations = append(violations, fmt.Sprintf("id must be a lowercase slug: %q", doc.Meta.ID))
	}
	if doc.Meta.Version != "" && !versionRe.MatchString(doc.Meta.Version) {
		violations = append(violations, fmt.Sprintf("version must be semantic: %q", doc.Meta.Version))
	}
	if doc.Meta.Category != "" {
		if _, ok := knownCategories[doc.Meta.Category]; !ok {
			violations = append(violations, fmt.Sprintf("unknown category: %q", doc.Meta.Category))
		}
	}
	if d := doc.Meta.Description; d != "" && len(d) < minDescriptionLength {
		violations = append(violations, fmt.Sprintf("description too short: %d characters", len(d)))
	}

	return violations
}
