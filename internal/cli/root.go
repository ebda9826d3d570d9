package cli

import "github.com/spf13/cobra"

// BuildVersion is overridden by release tooling (e.g. goreleaser).
var BuildVersion = "0.1.0-dev"

// GlobalOptions are shared flags for all subcommands.
type GlobalOptions struct {
	Verbose bool
}

func NewRootCommand() *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:           "subvet",
		Short:         "Submission validation CLI",
		Long:          "Subvet validates community submissions for security, quality, and marketplace fit before they are published.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().BoolVar(&opts.Verbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(
		newValidateCommand(opts),
		newRulesCommand(),
		newPolicyCommand(),
		newIndexCommand(),
		newWaiverCommand(),
		newServeCommand(opts),
		newVersionCommand(),
	)

	return cmd
}
