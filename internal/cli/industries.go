package cli

import (
	"resumecritic/internal/common"

	"github.com/spf13/cobra"
)

var industriesConfig common.CommandConfig

var industriesCmd = &cobra.Command{
	Use:   "industries",
	Short: "List the industries the critic can score against",
	Long: `List every registered industry keyword bank with its label and the
resume sections it expects. Uses the configured bank file when one is set.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if industriesConfig.OutputFormat == "" {
			industriesConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(industriesConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		logger := getLoggerFromContext(cmd.Context())

		c, err := newCritic(cfg, logger)
		if err != nil {
			return err
		}
		return common.NewOutputHandler(logger).HandleOutput(c.Industries(), industriesConfig)
	},
}

func init() {
	industriesCmd.Flags().StringVarP(&industriesConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	industriesCmd.Flags().StringVar(&industriesConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
}
