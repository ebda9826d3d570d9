package quality

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mkarlsen/subvet/internal/model"
	"github.com/mkarlsen/subvet/internal/submission"
)

// The six dimensions and their weights are fixed; weights sum to 100.
var dimensions = []struct {
	name   string
	weight int
	rubric func(submission.Document) (int, []string)
}{
	{"documentation", 25, scoreDocumentation},
	{"metadata", 20, scoreMetadata},
	{"structure", 20, scoreStructure},
	{"language", 15, scoreLanguage},
	{"usability", 10, scoreUsability},
	{"best-practices", 10, scoreBestPractices},
}

var (
	slugRe    = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
	versionRe = regexp.MustCompile(`^v?\d+\.\d+\.\d+$`)
	headingRe = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
	fenceRe   = regexp.MustCompile("(?m)^```")
	linkRe    = regexp.MustCompile(`https?://[^\s)>"']+`)
)

var knownCategories = map[string]struct{}{
	"persona": {}, "skill": {}, "agent": {}, "prompt": {}, "template": {}, "tool": {},
}

// Analyze computes the weighted quality score for a parsed submission. It is
// a pure function: the same document always yields the same report.
func Analyze(doc submission.Document) model.QualityReport {
	report := model.QualityReport{
		Dimensions: make(map[string]model.DimensionScore, len(dimensions)),
		Strengths:  []string{},
		Weaknesses: []string{},
	}

	weighted := 0
	for _, dim := range dimensions {
		score, notes := dim.rubric(doc)
		report.Dimensions[dim.name] = model.DimensionScore{
			Score:  score,
			Weight: dim.weight,
			Notes:  notes,
		}
		weighted += score * dim.weight
	}
	report.TotalScore = weighted / 100
	report.Grade = grade(report.TotalScore)

	// Fixed iteration order keeps the strengths/weaknesses lists stable.
	for _, dim := range dimensions {
		d := report.Dimensions[dim.name]
		switch {
		case d.Score >= 80:
			report.Strengths = append(report.Strengths, fmt.Sprintf("%s (%d/100)", dim.name, d.Score))
		case d.Score < 60:
			report.Weaknesses = append(report.Weaknesses, fmt.Sprintf("%s (%d/100)", dim.name, d.Score))
		}
	}
	return report
}

func grade(total int) string {
	switch {
	case total >= 90:
		return "A"
	case total >= 80:
		return "B"
	case total >= 70:
		return "C"
	case total >= 60:
		return "D"
	default:
		return "F"
	}
}

func scoreDocumentation(doc submission.Document) (int, []string) {
	score := 0
	var notes []string

	switch n := len(doc.Meta.Description); {
	case n >= 120:
		score += 40
	case n >= 60:
		score += 30
	case n >= 20:
		score += 20
	case n > 0:
		score += 10
		notes = append(notes, "description is very short")
	default:
		notes = append(notes, "description is missing")
	}

	if fenceRe.MatchString(doc.Body) {
		score += 30
	} else {
		notes = append(notes, "no example code blocks")
	}

	lower := strings.ToLower(doc.Body)
	if strings.Contains(lower, "## usage") || strings.Contains(lower, "## instructions") || strings.Contains(lower, "## how to") {
		score += 30
	} else {
		notes = append(notes, "no usage or instructions section")
	}
	return score, notes
}

func scoreMetadata(doc submission.Document) (int, []string) {
	score := 0
	var notes []string

	required := []string{"id", "name", "version", "description", "category"}
	present := 0
	for _, field := range required {
		if v, ok := doc.Fields[field]; ok && v != nil && fmt.Sprint(v) != "" {
			present++
		} else {
			notes = append(notes, fmt.Sprintf("missing field: %s", field))
		}
	}
	score += present * 12

	if slugRe.MatchString(doc.Meta.ID) {
		score += 14
	} else if doc.Meta.ID != "" {
		notes = append(notes, "id is not a lowercase slug")
	}
	if versionRe.MatchString(doc.Meta.Version) {
		score += 13
	} else if doc.Meta.Version != "" {
		notes = append(notes, "version is not semver")
	}
	if _, ok := knownCategories[doc.Meta.Category]; ok {
		score += 13
	} else if doc.Meta.Category != "" {
		notes = append(notes, "unknown category")
	}
	return score, notes
}

func scoreStructure(doc submission.Document) (int, []string) {
	score := 0
	var notes []string

	body := strings.TrimSpace(doc.Body)
	if body == "" {
		return 0, []string{"body is empty"}
	}
	score += 30

	headings := headingRe.FindAllString(doc.Body, -1)
	switch {
	case len(headings) >= 3:
		score += 40
	case len(headings) >= 1:
		score += 25
		notes = append(notes, "few section headings")
	default:
		notes = append(notes, "no section headings")
	}

	longLines := 0
	for _, line := range strings.Split(doc.Body, "\n") {
		if len(line) > 400 {
			longLines++
		}
	}
	if longLines == 0 {
		score += 30
	} else {
		notes = append(notes, fmt.Sprintf("%d overly long lines", longLines))
	}
	return score, notes
}

func scoreLanguage(doc submission.Document) (int, []string) {
	score := 100
	var notes []string

	lower := strings.ToLower(doc.Body + " " + doc.Meta.Description)
	for _, marker := range []string{"todo", "fixme", "lorem ipsum", "tbd", "xxx"} {
		if strings.Contains(lower, marker) {
			score -= 25
			notes = append(notes, fmt.Sprintf("placeholder text: %s", marker))
		}
	}

	if d := doc.Meta.Description; d != "" {
		first := rune(d[0])
		if first >= 'a' && first <= 'z' {
			score -= 10
			notes = append(notes, "description is not capitalized")
		}
	}

	words := len(strings.Fields(doc.Body))
	if words < 30 {
		score -= 30
		notes = append(notes, "body has very little prose")
	}
	if score < 0 {
		score = 0
	}
	return score, notes
}

func scoreUsability(doc submission.Document) (int, []string) {
	score := 0
	var notes []string

	switch n := len(doc.Meta.Tags); {
	case n >= 2 && n <= 8:
		score += 40
	case n == 1 || n > 8:
		score += 20
		notes = append(notes, "tag count outside the 2-8 sweet spot")
	default:
		notes = append(notes, "no tags")
	}

	if doc.Meta.Author != "" {
		score += 30
	} else {
		notes = append(notes, "no author")
	}

	if n := len(doc.Meta.Name); n > 0 && n <= 60 {
		score += 30
	} else {
		notes = append(notes, "name missing or too long")
	}
	return score, notes
}

func scoreBestPractices(doc submission.Document) (int, []string) {
	score := 100
	var notes []string

	for _, link := range linkRe.FindAllString(doc.Body, -1) {
		if strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "http://localhost") {
			score -= 20
			notes = append(notes, "plain http link")
			break
		}
	}

	fences := fenceRe.FindAllStringIndex(doc.Body, -1)
	if len(fences)%2 != 0 {
		score -= 30
		notes = append(notes, "unbalanced code fence")
	}

	if len(doc.Raw) > 20000 {
		score -= 20
		notes = append(notes, "document is unusually large")
	}
	if score < 0 {
		score = 0
	}
	return score, notes
}

// DimensionNames returns the fixed rubric order, for renderers.
func DimensionNames() []string {
	names := make([]string, 0, len(dimensions))
	for _, dim := range dimensions {
		names = append(names, dim.name)
	}
	return names
}
