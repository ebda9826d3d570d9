package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/subvet/internal/config"
	"github.com/mkarlsen/subvet/internal/github"
	"github.com/mkarlsen/subvet/internal/index"
)

func newIndexCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the marketplace index",
	}

	cmd.AddCommand(
		newIndexBuildCommand(),
		newIndexFetchCommand(),
	)

	return cmd
}

func newIndexBuildCommand() *cobra.Command {
	var (
		contentDir string
		outPath    string
		policyPath string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the index from a local content directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := config.LoadPolicy(policyPath)
			if err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}
			entries, err := index.BuildFromDir(contentDir, policy.Scan.ExcludePaths)
			if err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}
			if err := index.Save(outPath, entries); err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "index written: %s (%d entries)\n", outPath, len(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&contentDir, "content", "library", "Content directory to index")
	cmd.Flags().StringVar(&outPath, "output", ".subvet/index.json", "Index output path")
	cmd.Flags().StringVar(&policyPath, "policy", ".subvet/policy.yaml", "Policy file path")
	return cmd
}

func newIndexFetchCommand() *cobra.Command {
	var (
		owner     string
		repo      string
		indexPath string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the published index from the content repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			if owner == "" || repo == "" {
				return &ExitError{Code: exitUsage, Message: "--owner and --repo are required"}
			}
			client := github.New(owner, repo, os.Getenv("SUBVET_GITHUB_TOKEN"))
			entries, err := client.FetchIndex(cmd.Context(), indexPath)
			if err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}
			if err := index.Save(outPath, entries); err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "index fetched: %s (%d entries)\n", outPath, len(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Repository owner")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository name")
	cmd.Flags().StringVar(&indexPath, "path", "index/marketplace.json", "Index path inside the repository")
	cmd.Flags().StringVar(&outPath, "output", ".subvet/index.json", "Index output path")
	return cmd
}
