package common

import (
	"context"
	"fmt"

	"resumecritic/internal/errors"
	"resumecritic/internal/types"

	"golang.org/x/sync/errgroup"
)

// AnalyzeFunc critiques one resume's extracted text
type AnalyzeFunc func(ctx context.Context, resumeText, jobDescription string) (*types.AnalysisResult, error)

// BatchOptions configures RunAnalyzeCommand
type BatchOptions struct {
	JobFile     string
	Concurrency int
}

// AnalyzeFiles critiques every file with at most concurrency files in flight.
// Per-file failures are reported in the item instead of aborting the batch; items keep input order.
func AnalyzeFiles(ctx context.Context, fp *FileProcessor, files []string, jobDescription string,
	concurrency int, analyze AnalyzeFunc) []types.BatchAnalysisItem {
	items := make([]types.BatchAnalysisItem, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, file := range files {
		items[i].Source = file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				items[i].Error = err.Error()
				return nil
			}
			text, err := fp.ReadText(file)
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			result, err := analyze(gctx, text, jobDescription)
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			items[i].Result = result
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return items
}

// RunAnalyzeCommand reads the job description, critiques every resume file and writes the formatted output.
// A single file produces a plain result; several files produce a batch.
func RunAnalyzeCommand(
	ctx context.Context,
	logger *errors.Logger,
	fp *FileProcessor,
	out *OutputHandler,
	cmdConfig CommandConfig,
	opts BatchOptions,
	files []string,
	analyze AnalyzeFunc,
) error {
	jobDescription := ""
	if opts.JobFile != "" {
		text, err := fp.ReadText(opts.JobFile)
		if err != nil {
			return err
		}
		jobDescription = text
	}

	logger.Info("Starting resume analysis",
		"files", len(files),
		"has_job_description", jobDescription != "",
		"concurrency", opts.Concurrency,
		"format", cmdConfig.OutputFormat)

	if len(files) == 1 {
		text, err := fp.ReadText(files[0])
		if err != nil {
			return err
		}
		result, err := analyze(ctx, text, jobDescription)
		if err != nil {
			return err
		}
		return out.HandleOutput(result, cmdConfig)
	}

	items := AnalyzeFiles(ctx, fp, files, jobDescription, opts.Concurrency, analyze)
	if err := out.HandleOutput(items, cmdConfig); err != nil {
		return err
	}

	failed := 0
	for _, item := range items {
		if item.Error != "" {
			failed++
			logger.Warn("Resume analysis failed", "source", item.Source, "error", item.Error)
		}
	}
	if failed > 0 {
		return errors.NewValidationError("BATCH_PARTIAL_FAILURE",
			fmt.Sprintf("%d of %d resumes could not be analyzed", failed, len(items)), nil)
	}
	return nil
}
