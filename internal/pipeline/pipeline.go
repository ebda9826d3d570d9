package pipeline

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/mkarlsen/subvet/internal/config"
	"github.com/mkarlsen/subvet/internal/decision"
	"github.com/mkarlsen/subvet/internal/index"
	"github.com/mkarlsen/subvet/internal/integration"
	"github.com/mkarlsen/subvet/internal/model"
	"github.com/mkarlsen/subvet/internal/quality"
	"github.com/mkarlsen/subvet/internal/rules"
	"github.com/mkarlsen/subvet/internal/scanner"
	"github.com/mkarlsen/subvet/internal/submission"
	"github.com/mkarlsen/subvet/internal/waiver"
)

const reportSchema = "https://subvet.dev/schemas/validation-v1.json"

type Options struct {
	Policy     config.Policy
	Rules      []rules.Rule
	Index      *index.Index
	Waivers    waiver.File
	Version    string
	PolicyFile string
	Now        time.Time
}

// Run executes the four analyzers concurrently over the read-only document
// and index, then fuses their reports through the decision engine. The
// errgroup wait is the single synchronization barrier.
func Run(ctx context.Context, doc submission.Document, opts Options) (model.ValidationReport, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	start := time.Now()

	scan, err := scanner.New(opts.Rules, opts.Policy)
	if err != nil {
		return model.ValidationReport{}, err
	}

	var (
		scanResult  model.ScanResult
		qualityRep  model.QualityReport
		integRep    model.IntegrationReport
		isDuplicate bool
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := scan.Scan(doc.Raw)
		if err != nil {
			return err
		}
		scanResult = res
		return nil
	})
	g.Go(func() error {
		qualityRep = quality.Analyze(doc)
		return nil
	})
	g.Go(func() error {
		integRep = integration.Test(doc, opts.Index)
		return nil
	})
	g.Go(func() error {
		isDuplicate = opts.Index.Contains(doc.Meta.ID)
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.ValidationReport{}, err
	}

	integRep.DuplicateFound = isDuplicate

	// Waived findings are dropped before risk derivation so an accepted
	// false positive cannot escalate the risk level.
	scanResult = scanner.Summarize(waiver.Filter(opts.Waivers, scanResult.Issues))

	verdict := decision.Decide(decision.Inputs{
		Scan:        scanResult,
		Quality:     qualityRep,
		Integration: integRep,
		Approval:    opts.Policy.Approval,
	})

	return model.ValidationReport{
		Schema: reportSchema,
		ID:     ulid.Make().String(),
		Submission: model.SubmissionInfo{
			Path:       doc.Path,
			Identifier: doc.Meta.ID,
			Name:       doc.Meta.Name,
			Category:   doc.Meta.Category,
		},
		Scan:        scanResult,
		Quality:     qualityRep,
		Integration: integRep,
		Verdict:     verdict,
		Metadata: model.Metadata{
			Tool:           "subvet",
			Version:        opts.Version,
			ValidatedAt:    opts.Now,
			DurationMS:     time.Since(start).Milliseconds(),
			RulesLoaded:    len(opts.Rules),
			IndexEntries:   opts.Index.Len(),
			PolicyFile:     opts.PolicyFile,
			SeverityCounts: scanner.CountBySeverity(scanResult.Issues),
		},
	}, nil
}
