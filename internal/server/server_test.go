package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mkarlsen/subvet/internal/config"
	"github.com/mkarlsen/subvet/internal/index"
	"github.com/mkarlsen/subvet/internal/model"
	"github.com/mkarlsen/subvet/internal/pipeline"
	"github.com/mkarlsen/subvet/internal/rules"
	"github.com/mkarlsen/subvet/internal/waiver"
)

const sampleBody = `---
id: travel-guide
name: Travel Guide
version: 1.0.0
category: persona
description: A friendly guide that plans trips and explains local customs clearly.
author: alice
tags:
  - travel
  - planning
---

# Travel Guide

Plans multi-day trips with realistic pacing.

## Usage

Describe where you are going and for how long.
`

func testServer(t *testing.T) *Server {
	t.Helper()
	corpus, err := rules.Load("../../rules", "")
	if err != nil {
		t.Fatal(err)
	}
	opts := pipeline.Options{
		Policy:  config.DefaultPolicy(),
		Rules:   corpus,
		Index:   index.New([]index.Entry{{Identifier: "code-reviewer", Name: "Code Reviewer"}}),
		Waivers: waiver.Empty(),
		Version: "test",
	}
	return New(opts, zap.NewNop().Sugar())
}

func TestValidateEndpointReturnsReport(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/validate", strings.NewReader(sampleBody))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var report model.ValidationReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Submission.Identifier != "travel-guide" {
		t.Fatalf("unexpected submission: %+v", report.Submission)
	}
	if report.Verdict.Decision == "" {
		t.Fatal("expected a verdict")
	}
}

func TestValidateEndpointRejectsMalformedSubmission(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/validate", strings.NewReader("no frontmatter here"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestValidateEndpointRejectsOversizeContent(t *testing.T) {
	srv := testServer(t)
	body := sampleBody + strings.Repeat("padding line for size\n", 3000)
	req := httptest.NewRequest(http.MethodPost, "/v1/validate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
