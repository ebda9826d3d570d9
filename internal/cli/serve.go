package cli

import (
	"github.com/spf13/cobra"

	"github.com/mkarlsen/subvet/internal/logging"
	"github.com/mkarlsen/subvet/internal/server"
)

func newServeCommand(global *GlobalOptions) *cobra.Command {
	var (
		addr        string
		rulesPath   string
		policyPath  string
		indexPath   string
		waiversPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the validation HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(global.Verbose)
			if err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}
			defer log.Sync()

			opts, err := loadPipelineOptions(rulesPath, policyPath, indexPath, waiversPath)
			if err != nil {
				return &ExitError{Code: exitUsage, Message: err.Error()}
			}
			opts.PolicyFile = policyPath

			srv := server.New(opts, log)
			if err := srv.ListenAndServe(addr); err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Path to custom rules")
	cmd.Flags().StringVar(&policyPath, "policy", ".subvet/policy.yaml", "Policy file path")
	cmd.Flags().StringVar(&indexPath, "index", ".subvet/index.json", "Marketplace index path")
	cmd.Flags().StringVar(&waiversPath, "waivers", ".subvet/waivers.json", "Waiver file path")
	return cmd
}
