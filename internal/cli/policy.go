package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/subvet/internal/config"
)

const defaultPolicyTemplate = `version: "1"
limits:
  max_content_size: 50000
approval:
  quality_threshold: 85
  max_high_risk_issues: 1
  max_risk_level: low
scan:
  context_radius: 40
  exclude_paths:
    - ".git/**"
    - "node_modules/**"
    - "_drafts/**"
allowlist:
  patterns:
    - regex: "http://localhost"
      reason: "local development links"
`

func newPolicyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Manage validation policies",
	}

	cmd.AddCommand(
		newPolicyInitCommand(),
		newPolicyCheckCommand(),
	)

	return cmd
}

func newPolicyInitCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize policy file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = ".subvet/policy.yaml"
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}

			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "policy already exists: %s\n", path)
				return nil
			}

			if err := os.WriteFile(path, []byte(defaultPolicyTemplate), 0o644); err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "policy created: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", ".subvet/policy.yaml", "Policy output path")
	return cmd
}

func newPolicyCheckCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate policy syntax and semantics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ValidatePolicy(path); err != nil {
				return &ExitError{Code: exitUsage, Message: fmt.Sprintf("policy check failed: %v", err)}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "policy valid: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", ".subvet/policy.yaml", "Policy path")
	return cmd
}
