package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"resumecritic/internal/config"
	"resumecritic/internal/critic"
	"resumecritic/internal/errors"
	"resumecritic/internal/extract"
	"resumecritic/internal/types"
)

func newTestFileProcessor() *FileProcessor {
	logger := errors.NewNopLogger()
	return NewFileProcessor(logger, extract.New(config.ExtractionConfig{}, logger), 1024*1024)
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func wordCounter(_ context.Context, resumeText, jobDescription string) (*types.AnalysisResult, error) {
	if strings.Contains(resumeText, "fail") {
		return nil, fmt.Errorf("analysis failed")
	}
	return &types.AnalysisResult{
		Industry:     "unknown",
		OverallScore: len(strings.Fields(resumeText)),
		KeywordAnalysis: types.KeywordAnalysis{
			KeywordCoverage: fmt.Sprintf("jd=%t", jobDescription != ""),
		},
	}, nil
}

func TestAnalyzeFilesKeepsOrderAndErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.txt": "one two three",
		"b.txt": "please fail here",
		"c.txt": "   ",
		"d.txt": "four five",
	})
	files := []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "c.txt"),
		filepath.Join(dir, "missing.txt"),
		filepath.Join(dir, "d.txt"),
	}

	var calls atomic.Int32
	analyze := func(ctx context.Context, text, jd string) (*types.AnalysisResult, error) {
		calls.Add(1)
		return wordCounter(ctx, text, jd)
	}

	items := AnalyzeFiles(context.Background(), newTestFileProcessor(), files, "", 2, analyze)
	if len(items) != len(files) {
		t.Fatalf("expected %d items, got %d", len(files), len(items))
	}
	for i, item := range items {
		if item.Source != files[i] {
			t.Errorf("item %d source = %s, want %s", i, item.Source, files[i])
		}
	}

	if items[0].Result == nil || items[0].Result.OverallScore != 3 {
		t.Errorf("unexpected first result: %+v", items[0])
	}
	if items[1].Error != "analysis failed" {
		t.Errorf("expected analysis failure, got %+v", items[1])
	}
	if !strings.Contains(items[2].Error, "no text") {
		t.Errorf("expected no-text error, got %+v", items[2])
	}
	if !strings.Contains(items[3].Error, "File not found") {
		t.Errorf("expected not-found error, got %+v", items[3])
	}
	if items[4].Result == nil || items[4].Result.OverallScore != 2 {
		t.Errorf("unexpected last result: %+v", items[4])
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 analyze calls, got %d", calls.Load())
	}
}

func TestAnalyzeFilesCanceled(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "one"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := AnalyzeFiles(ctx, newTestFileProcessor(), []string{filepath.Join(dir, "a.txt")}, "", 1, wordCounter)
	if items[0].Result != nil || items[0].Error == "" {
		t.Errorf("expected canceled item, got %+v", items[0])
	}
}

func TestRunAnalyzeCommandSingleFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{"cv.txt": "alpha beta", "job.txt": "wanted"})
	var stdout bytes.Buffer
	out := NewOutputHandlerWithWriter(errors.NewNopLogger(), &stdout)

	err := RunAnalyzeCommand(context.Background(), errors.NewNopLogger(), newTestFileProcessor(), out,
		CommandConfig{OutputFormat: "json"},
		BatchOptions{JobFile: filepath.Join(dir, "job.txt"), Concurrency: 1},
		[]string{filepath.Join(dir, "cv.txt")}, wordCounter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("output is not an analysis result: %v\n%s", err, stdout.String())
	}
	if result.OverallScore != 2 || result.KeywordAnalysis.KeywordCoverage != "jd=true" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestRunAnalyzeCommandBatchToFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "one", "b.txt": "fail"})
	target := filepath.Join(dir, "out", "report.json")
	out := NewOutputHandlerWithWriter(errors.NewNopLogger(), &bytes.Buffer{})

	err := RunAnalyzeCommand(context.Background(), errors.NewNopLogger(), newTestFileProcessor(), out,
		CommandConfig{OutputFormat: "json", OutputFile: target},
		BatchOptions{Concurrency: 2},
		[]string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}, wordCounter)
	if !errors.HasCode(err, "BATCH_PARTIAL_FAILURE") {
		t.Fatalf("expected partial failure, got %v", err)
	}

	raw, readErr := os.ReadFile(target)
	if readErr != nil {
		t.Fatalf("report not written: %v", readErr)
	}
	var items []types.BatchAnalysisItem
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("invalid report: %v", err)
	}
	if len(items) != 2 || items[0].Result == nil || items[1].Error == "" {
		t.Errorf("unexpected report: %+v", items)
	}
}

func TestRunAnalyzeCommandWithCritic(t *testing.T) {
	dir := writeFiles(t, map[string]string{"cv.md": "Jane Doe\njane@example.com\nExperience\n- Served customers at the register\n"})
	c := critic.New(critic.MustDefaultRegistry())
	analyze := func(_ context.Context, text, jd string) (*types.AnalysisResult, error) {
		return c.AnalyzeResume(text, jd, "service_retail")
	}

	var stdout bytes.Buffer
	out := NewOutputHandlerWithWriter(errors.NewNopLogger(), &stdout)
	err := RunAnalyzeCommand(context.Background(), errors.NewNopLogger(), newTestFileProcessor(), out,
		CommandConfig{OutputFormat: "text"}, BatchOptions{Concurrency: 1},
		[]string{filepath.Join(dir, "cv.md")}, analyze)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Industry: service_retail") {
		t.Errorf("unexpected output:\n%s", stdout.String())
	}
}

func TestOutputHandlerUnknownFormat(t *testing.T) {
	out := NewOutputHandlerWithWriter(errors.NewNopLogger(), &bytes.Buffer{})
	err := out.HandleOutput(types.AnalysisResult{}, CommandConfig{OutputFormat: "xml"})
	if !errors.HasCode(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("expected invalid format error, got %v", err)
	}
}
