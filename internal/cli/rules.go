package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkarlsen/subvet/internal/rules"
)

func newRulesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage detection rules",
	}

	cmd.AddCommand(
		newRulesListCommand(),
		newRulesTestCommand(),
	)

	return cmd
}

func newRulesListCommand() *cobra.Command {
	var customRulesPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loaded detection rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			rulesDir, err := resolveRulesDir("rules")
			if err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}
			loaded, err := rules.Load(rulesDir, customRulesPath)
			if err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}
			for _, r := range loaded {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-8s %s\n", r.ID, r.Severity, r.Category)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d rules loaded\n", len(loaded))
			return nil
		},
	}

	cmd.Flags().StringVar(&customRulesPath, "rules", "", "Custom rules path")
	return cmd
}

func newRulesTestCommand() *cobra.Command {
	var customRulesPath string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Run rule test cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			rulesDir, err := resolveRulesDir("rules")
			if err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}
			pass, fail, err := runRuleTests(rulesDir, customRulesPath)
			if err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "rule tests: pass=%d fail=%d\n", pass, fail)
			if fail > 0 {
				return &ExitError{Code: exitUsage, Message: "rule tests failed"}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&customRulesPath, "rules", "", "Custom rules path")
	return cmd
}
