package cli

import (
	"context"

	"resumecritic/internal/config"
	"resumecritic/internal/critic"
	"resumecritic/internal/errors"
	"resumecritic/internal/extract"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "resumecritic",
	Short: "A CLI tool for critiquing resumes",
	Long: `Resumecritic scores resumes against industry keyword banks and reports
strengths, gaps, formatting issues and red flags. It reads PDF, DOCX and plain
text files, and can also run as an HTTP service with an upload form.`,
	SilenceUsage: true,
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	// Attach the config and logger to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// newCritic builds a critic from the configured bank file, or the built-in banks
func newCritic(cfg *config.Config, logger *errors.Logger) (*critic.Critic, error) {
	if cfg.Critic.BankFile == "" {
		reg, err := critic.DefaultRegistry()
		if err != nil {
			return nil, err
		}
		return critic.New(reg), nil
	}

	reg, err := critic.LoadRegistryFile(cfg.Critic.BankFile)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded keyword banks",
		"file", cfg.Critic.BankFile,
		"industries", len(reg.Industries()))
	return critic.New(reg), nil
}

// newExtractor builds the document extractor shared by analyze and serve
func newExtractor(cfg *config.Config, logger *errors.Logger) *extract.Extractor {
	return extract.New(cfg.Extraction, logger)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(industriesCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
