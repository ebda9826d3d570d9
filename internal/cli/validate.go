package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/subvet/internal/logging"
	"github.com/mkarlsen/subvet/internal/model"
	"github.com/mkarlsen/subvet/internal/output"
	"github.com/mkarlsen/subvet/internal/pipeline"
	"github.com/mkarlsen/subvet/internal/scanner"
	"github.com/mkarlsen/subvet/internal/submission"
)

// Exit codes for validate. Zero means every submission auto-approved.
const (
	exitUsage  = 2
	exitReview = 3
	exitReject = 4
)

type validateOptions struct {
	RulesPath   string
	PolicyPath  string
	IndexPath   string
	WaiversPath string
	Format      string
	OutputPath  string
}

func newValidateCommand(global *GlobalOptions) *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <file-or-directory>",
		Short: "Validate submissions and print a verdict",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(global.Verbose)
			if err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}
			defer log.Sync()

			popts, err := loadPipelineOptions(opts.RulesPath, opts.PolicyPath, opts.IndexPath, opts.WaiversPath)
			if err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}
			popts.PolicyFile = opts.PolicyPath

			paths, err := collectSubmissionPaths(args[0])
			if err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}

			var buf bytes.Buffer
			worst := 0
			for _, path := range paths {
				doc, err := submission.Load(path)
				if err != nil {
					return &ExitError{Code: exitReject, Message: fmt.Sprintf("%s: %v", path, err)}
				}

				log.Debugw("validating", "path", path, "id", doc.Meta.ID)
				report, err := pipeline.Run(context.Background(), doc, popts)
				if err != nil {
					if errors.Is(err, scanner.ErrContentTooLarge) {
						return &ExitError{Code: exitReject, Message: fmt.Sprintf("%s: %v", path, err)}
					}
					return &ExitError{Code: exitUsage, Message: fmt.Sprintf("%s: %v", path, err)}
				}

				if err := output.Write(report, opts.Format, &buf); err != nil {
					return &ExitError{Code: exitUsage, Message: err.Error()}
				}

				if code := exitCodeFor(report.Verdict.Decision); code > worst {
					worst = code
				}
			}

			if opts.OutputPath != "" {
				if err := os.WriteFile(opts.OutputPath, buf.Bytes(), 0o644); err != nil {
					return &ExitError{Code: exitUsage, Message: err.Error()}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "report written: %s\n", opts.OutputPath)
			} else {
				fmt.Fprint(cmd.OutOrStdout(), buf.String())
			}

			if worst != 0 {
				return &ExitError{Code: worst, Message: fmt.Sprintf("validation finished: %s", decisionForCode(worst))}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.RulesPath, "rules", "", "Path to custom rules")
	cmd.Flags().StringVar(&opts.PolicyPath, "policy", ".subvet/policy.yaml", "Policy file path")
	cmd.Flags().StringVar(&opts.IndexPath, "index", ".subvet/index.json", "Marketplace index path")
	cmd.Flags().StringVar(&opts.WaiversPath, "waivers", ".subvet/waivers.json", "Waiver file path")
	cmd.Flags().StringVar(&opts.Format, "format", "human", "Output format: human|json")
	cmd.Flags().StringVar(&opts.OutputPath, "output", "", "Output file path")

	return cmd
}

func exitCodeFor(decision string) int {
	switch decision {
	case model.DecisionReject:
		return exitReject
	case model.DecisionManualReview:
		return exitReview
	default:
		return 0
	}
}

func decisionForCode(code int) string {
	if code == exitReject {
		return model.DecisionReject
	}
	return model.DecisionManualReview
}
