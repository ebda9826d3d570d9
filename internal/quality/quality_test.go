package quality

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mkarlsen/subvet/internal/submission"
)

const goodSubmission = `---
id: code-reviewer
name: Code Reviewer
version: 1.2.0
category: skill
description: A thorough reviewer of submitted code that flags common mistakes, explains each finding, and suggests concrete fixes with examples.
author: alice
tags:
  - review
  - code
---

# Code Reviewer

A skill that reviews diffs line by line and reports problems with context.

## Usage

Attach the skill and provide a diff. The reviewer walks each hunk and
comments on style, correctness, and missing tests in plain language.

## Examples

` + "```" + `
review --diff changes.patch
` + "```" + `

## Notes

Findings are advisory. Nothing here executes code or touches the network,
and every comment links back to the exact line it describes.
`

func parseDoc(t *testing.T, raw string) submission.Document {
	t.Helper()
	doc, err := submission.Parse([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestAnalyzeWeightsSumToHundred(t *testing.T) {
	doc := parseDoc(t, goodSubmission)
	report := Analyze(doc)
	total := 0
	for _, d := range report.Dimensions {
		total += d.Weight
	}
	if total != 100 {
		t.Fatalf("dimension weights sum to %d, want 100", total)
	}
}

func TestAnalyzeGoodSubmissionGradesHighly(t *testing.T) {
	doc := parseDoc(t, goodSubmission)
	report := Analyze(doc)
	if report.TotalScore < 85 {
		t.Fatalf("expected score >= 85, got %d (%+v)", report.TotalScore, report.Dimensions)
	}
	if report.Grade != "A" && report.Grade != "B" {
		t.Fatalf("unexpected grade: %s", report.Grade)
	}
	if len(report.Strengths) == 0 {
		t.Fatal("expected strengths for a good submission")
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	doc := parseDoc(t, goodSubmission)
	first := Analyze(doc)
	second := Analyze(doc)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("analyze is not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestAnalyzePenalizesBareSubmission(t *testing.T) {
	doc := parseDoc(t, "---\nid: x\n---\nhi\n")
	report := Analyze(doc)
	if report.TotalScore >= 60 {
		t.Fatalf("bare submission scored too high: %d", report.TotalScore)
	}
	if report.Grade != "F" && report.Grade != "D" {
		t.Fatalf("unexpected grade: %s", report.Grade)
	}
	if len(report.Weaknesses) == 0 {
		t.Fatal("expected weaknesses for a bare submission")
	}
}

func TestAnalyzeFlagsPlaceholderText(t *testing.T) {
	raw := strings.Replace(goodSubmission, "Findings are advisory.", "TODO finish this section.", 1)
	doc := parseDoc(t, raw)
	report := Analyze(doc)
	if report.Dimensions["language"].Score >= Analyze(parseDoc(t, goodSubmission)).Dimensions["language"].Score {
		t.Fatal("placeholder text should reduce the language score")
	}
}

func TestGradeBoundaries(t *testing.T) {
	cases := map[int]string{95: "A", 90: "A", 89: "B", 80: "B", 79: "C", 70: "C", 69: "D", 60: "D", 59: "F", 0: "F"}
	for total, want := range cases {
		if got := grade(total); got != want {
			t.Fatalf("grade(%d) = %s, want %s", total, got, want)
		}
	}
}
