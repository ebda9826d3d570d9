package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/subvet/internal/waiver"
)

func newWaiverCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "waiver",
		Short: "Manage accepted findings",
	}

	cmd.AddCommand(
		newWaiverAddCommand(),
		newWaiverListCommand(),
	)

	return cmd
}

func newWaiverAddCommand() *cobra.Command {
	var (
		path    string
		ruleID  string
		matched string
		reason  string
		addedBy string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Waive a reviewed finding",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ruleID == "" || matched == "" || reason == "" {
				return &ExitError{Code: exitUsage, Message: "--rule, --match, and --reason are required"}
			}

			current, err := waiver.Load(path)
			if err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}
			updated := waiver.Add(current, ruleID, matched, reason, addedBy)
			if err := waiver.Save(path, updated); err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "waiver recorded: %s (%d total)\n", ruleID, len(updated.Entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "waivers", ".subvet/waivers.json", "Waiver file path")
	cmd.Flags().StringVar(&ruleID, "rule", "", "Rule id of the finding")
	cmd.Flags().StringVar(&matched, "match", "", "Exact matched text of the finding")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the finding is acceptable")
	cmd.Flags().StringVar(&addedBy, "by", "", "Reviewer recording the waiver")
	return cmd
}

func newWaiverListCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded waivers",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := waiver.Load(path)
			if err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}
			for _, e := range f.Entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s (%s)\n", e.RuleID, e.Reason, e.AddedBy)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d waivers\n", len(f.Entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "waivers", ".subvet/waivers.json", "Waiver file path")
	return cmd
}
