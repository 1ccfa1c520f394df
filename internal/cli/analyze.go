package cli

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"resumecritic/internal/common"
	"resumecritic/internal/config"
	"resumecritic/internal/critic"
	"resumecritic/internal/errors"
	"resumecritic/internal/observability"
	"resumecritic/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <resume-file>...",
	Short: "Critique one or more resumes",
	Long: `Critique resume files (PDF, DOCX or plain text) against the industry
keyword banks. Each critique includes:
- An overall score between 5 and 95
- Found and suggested keywords, with coverage against a job description
- Strengths and areas for improvement
- Formatting feedback and recommendations

Several files are critiqued concurrently and reported as a batch.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if err := common.ValidateConcurrency(analyzeOpts.Concurrency); err != nil {
			return err
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig   common.CommandConfig
	analyzeOpts     common.BatchOptions
	analyzeIndustry string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().StringVarP(&analyzeOpts.JobFile, "job", "j", "", "Job description file to measure keyword coverage against")
	analyzeCmd.Flags().StringVarP(&analyzeIndustry, "industry", "i", common.AutoIndustry, "Industry bank to use, or 'auto' to detect")
	analyzeCmd.Flags().IntVar(&analyzeOpts.Concurrency, "concurrency", runtime.NumCPU(), "Resumes critiqued in parallel")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		if len(cfg.App.SupportedFormats) > 0 {
			return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
		}
		return common.NewOutputHandler(nil).GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = analyzeCmd.RegisterFlagCompletionFunc("industry", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		names := append([]string{common.AutoIndustry}, critic.MustDefaultRegistry().Industries()...)
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	c, err := newCritic(cfg, logger)
	if err != nil {
		return err
	}

	industry := common.NormalizeIndustry(analyzeIndustry)
	if industry != "" && !c.Registry().Has(industry) {
		return errors.NewValidationError(errors.ErrCodeInvalidIndustry,
			fmt.Sprintf("unknown industry %q", analyzeIndustry), nil).
			WithContext("known", c.Registry().Industries())
	}

	om := newCLIObservability(cfg, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shutdown observability")
		}
	}()

	analyze := func(ctx context.Context, resumeText, jobDescription string) (*types.AnalysisResult, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		result, signals, err := c.AnalyzeDetailed(resumeText, jobDescription, industry)
		outcome := observability.AnalysisOutcome{Source: "cli", Duration: time.Since(start), Err: err}
		if err == nil {
			outcome.Industry = result.Industry
			outcome.Score = result.OverallScore
			outcome.RedFlagKinds = signals.FlagNames()
		}
		om.GetMetrics().RecordAnalysis(ctx, outcome)
		return result, err
	}

	fp := common.NewFileProcessor(logger, newExtractor(cfg, logger), cfg.App.MaxFileSize)
	err = common.RunAnalyzeCommand(ctx, logger, fp, common.NewOutputHandler(logger),
		analyzeConfig, analyzeOpts, args, analyze)
	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully", "files", len(args))
	return nil
}

// newCLIObservability exports metrics for one-shot runs; the Prometheus scrape endpoint is serve-only.
// A setup failure only disables metrics.
func newCLIObservability(cfg *config.Config, logger *errors.Logger) *observability.ObservabilityManager {
	obsConfig := observability.GetObservabilityConfig(cfg, Version)
	obsConfig.Prometheus.Enabled = false
	om, err := observability.NewObservabilityManager(obsConfig)
	if err != nil {
		logger.LogError(err, "Failed to initialize observability, continuing without metrics")
		return nil
	}
	return om
}
