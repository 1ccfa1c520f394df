// Package critic scores resumes against per-industry keyword banks.
//
// Everything here is deterministic lexical matching: the same resume, job
// description and industry always yield the same result. A *Critic holds no
// mutable state and is safe for concurrent use.
package critic

import (
	"fmt"
	"math"
	"strings"

	"resumecritic/internal/errors"
	"resumecritic/internal/types"
)

// NoCoverage is reported when there is nothing to measure coverage against.
const NoCoverage = "—"

// Critic composes detection, analysis, scoring and feedback.
type Critic struct {
	registry *Registry
	detector *Detector
	analyzer *Analyzer
}

// New returns a critic over reg.
func New(reg *Registry) *Critic {
	return &Critic{
		registry: reg,
		detector: NewDetector(reg),
		analyzer: NewAnalyzer(reg),
	}
}

// Registry returns the keyword banks this critic was built with.
func (c *Critic) Registry() *Registry {
	return c.registry
}

// Industries describes every registered industry in declaration order.
func (c *Critic) Industries() []types.IndustryInfo {
	banks := c.registry.Banks()
	out := make([]types.IndustryInfo, len(banks))
	for i, b := range banks {
		out[i] = types.IndustryInfo{
			Name:             b.Name,
			Label:            b.Label,
			RequiredSections: nonNil(b.RequiredSections),
		}
	}
	return out
}

// AnalyzeResume critiques resumeText. jobDescription and industry may be empty;
// an empty industry means auto-detect.
func (c *Critic) AnalyzeResume(resumeText, jobDescription, industry string) (*types.AnalysisResult, error) {
	result, _, err := c.AnalyzeDetailed(resumeText, jobDescription, industry)
	return result, err
}

// AnalyzeDetailed is AnalyzeResume that also returns the raw signals behind the result.
func (c *Critic) AnalyzeDetailed(resumeText, jobDescription, industry string) (*types.AnalysisResult, *Signals, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, nil, errors.NewValidationError(errors.ErrCodeEmptyResume, "resume text is empty", nil)
	}

	detected, err := c.detector.Detect(resumeText, jobDescription, industry)
	if err != nil {
		return nil, nil, err
	}

	bank := c.registry.Lookup(detected)
	signals := c.analyzer.Analyze(resumeText, bank, jobDescription)
	score := Score(signals)
	fb := Generate(signals, score, bank)

	coverage, note := keywordCoverage(signals, bank)

	result := &types.AnalysisResult{
		Industry:     detected,
		OverallScore: score,
		KeywordAnalysis: types.KeywordAnalysis{
			FoundKeywords:     nonNil(signals.Found),
			SuggestedKeywords: nonNil(signals.Suggested),
			KeywordCoverage:   coverage,
			Note:              note,
		},
		Strengths:           fb.Strengths,
		AreasForImprovement: fb.Improvements,
		FormattingFeedback: types.FormattingFeedback{
			Structure:   fb.Structure,
			Readability: fb.Readability,
			Suggestions: fb.Suggestions,
		},
		Recommendations: fb.Recommendations,
		Stats: types.ResumeStats{
			WordCount: signals.WordCount,
			LineCount: signals.NonBlankLines,
			HasEmail:  signals.HasEmail,
			HasPhone:  signals.HasPhone,
		},
	}
	return result, signals, nil
}

// keywordCoverage measures resume coverage of the job description's bank terms.
func keywordCoverage(s *Signals, bank *KeywordBank) (string, string) {
	if !s.HasJobDescription {
		return NoCoverage, "Coverage is measured against a job description; none was supplied"
	}
	universe := len(s.JDTerms)
	if universe == 0 {
		return NoCoverage, fmt.Sprintf("The job description shares no terms with the %s keyword bank", bank.Label)
	}
	found := universe - len(s.Suggested)
	pct := int(math.Round(100 * float64(found) / float64(universe)))
	return fmt.Sprintf("%d%% (%d/%d)", pct, found, universe), ""
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
