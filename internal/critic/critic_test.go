package critic

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumecritic/internal/errors"
)

func TestAnalyzeResume_ServiceRetail(t *testing.T) {
	c := newTestCritic(t)

	result, err := c.AnalyzeResume(retailResume, "", "")
	require.NoError(t, err)

	assert.Equal(t, "service_retail", result.Industry)
	// 55 base + 9 sections + 10 keywords + 6 quantified, no red flags
	assert.Equal(t, 80, result.OverallScore)
	assert.Contains(t, result.KeywordAnalysis.FoundKeywords, "POS")
	assert.Contains(t, result.KeywordAnalysis.FoundKeywords, "Customer Service")
	assert.Equal(t, NoCoverage, result.KeywordAnalysis.KeywordCoverage)
	assert.NotEmpty(t, result.KeywordAnalysis.Note)

	for _, item := range result.AreasForImprovement {
		assert.NotEqual(t, emailNudge, item)
		assert.NotEqual(t, toneNudge, item)
	}
}

func TestAnalyzeResume_UnprofessionalResume(t *testing.T) {
	c := newTestCritic(t)

	clean, err := c.AnalyzeResume(retailResume, "", "")
	require.NoError(t, err)
	sloppy, err := c.AnalyzeResume(unprofessionalRetailResume, "", "")
	require.NoError(t, err)

	assert.Equal(t, "service_retail", sloppy.Industry)
	assert.Equal(t, 50, sloppy.OverallScore)
	assert.GreaterOrEqual(t, clean.OverallScore-sloppy.OverallScore, 20)
	assert.Contains(t, sloppy.AreasForImprovement, emailNudge)
	assert.Contains(t, sloppy.AreasForImprovement, toneNudge)
}

func TestAnalyzeResume_JobDescriptionChangesKeywords(t *testing.T) {
	c := newTestCritic(t)

	withJD, err := c.AnalyzeResume(techResume, techJobDescription, "")
	require.NoError(t, err)
	withoutJD, err := c.AnalyzeResume(techResume, "", "")
	require.NoError(t, err)

	assert.Equal(t, "technology", withJD.Industry)
	assert.Equal(t, []string{"Kubernetes", "Terraform"}, withJD.KeywordAnalysis.SuggestedKeywords)
	assert.Equal(t, "50% (2/4)", withJD.KeywordAnalysis.KeywordCoverage)
	assert.Empty(t, withJD.KeywordAnalysis.Note)

	assert.Equal(t, NoCoverage, withoutJD.KeywordAnalysis.KeywordCoverage)
	assert.NotEqual(t, withJD.KeywordAnalysis.SuggestedKeywords, withoutJD.KeywordAnalysis.SuggestedKeywords)
	assert.LessOrEqual(t, len(withoutJD.KeywordAnalysis.SuggestedKeywords), maxAdjacencyTerms)
	for _, s := range withoutJD.KeywordAnalysis.SuggestedKeywords {
		assert.NotContains(t, withoutJD.KeywordAnalysis.FoundKeywords, s)
	}
}

func TestAnalyzeResume_JobDescriptionWithoutBankTerms(t *testing.T) {
	c := newTestCritic(t)

	result, err := c.AnalyzeResume(techResume, "Friendly office looking for someone punctual.", "technology")
	require.NoError(t, err)

	assert.Equal(t, NoCoverage, result.KeywordAnalysis.KeywordCoverage)
	assert.Contains(t, result.KeywordAnalysis.Note, "no terms")
	assert.Empty(t, result.KeywordAnalysis.SuggestedKeywords)
}

func TestAnalyzeResume_Errors(t *testing.T) {
	c := newTestCritic(t)

	tests := []struct {
		name     string
		resume   string
		industry string
		code     string
	}{
		{name: "empty resume", resume: "", code: errors.ErrCodeEmptyResume},
		{name: "whitespace resume", resume: " \n\t  ", code: errors.ErrCodeEmptyResume},
		{name: "unregistered industry", resume: techResume, industry: "astronautics", code: errors.ErrCodeInvalidIndustry},
		{name: "unknown is not a registry key", resume: techResume, industry: "unknown", code: errors.ErrCodeInvalidIndustry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := c.AnalyzeResume(tt.resume, "", tt.industry)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
		})
	}
}

func TestAnalyzeResume_ForcedIndustry(t *testing.T) {
	c := newTestCritic(t)

	result, err := c.AnalyzeResume(retailResume, "", "  Healthcare ")
	require.NoError(t, err)
	assert.Equal(t, "healthcare", result.Industry)
}

func TestAnalyzeDetailed_ExposesSignals(t *testing.T) {
	c := newTestCritic(t)

	result, signals, err := c.AnalyzeDetailed(unprofessionalRetailResume, "", "")
	require.NoError(t, err)
	require.NotNil(t, signals)

	assert.Equal(t, result.Industry, signals.Industry)
	assert.True(t, signals.HasFlag(FlagTone))
	assert.True(t, signals.HasFlag(FlagEmployment))
	assert.True(t, signals.UnprofessionalEmail)
	assert.Equal(t, result.Stats.WordCount, signals.WordCount)
	assert.Contains(t, signals.FlagNames(), string(FlagTone))

	_, signals, err = c.AnalyzeDetailed("   ", "", "")
	assert.Nil(t, signals)
	assert.Nil(t, signals.FlagNames())
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyResume))
}

func TestCritic_Industries(t *testing.T) {
	c := newTestCritic(t)

	infos := c.Industries()
	require.Len(t, infos, len(c.Registry().Industries()))
	assert.Equal(t, "technology", infos[0].Name)
	assert.Equal(t, "Technology", infos[0].Label)
	for _, info := range infos {
		assert.NotNil(t, info.RequiredSections, info.Name)
	}
}

func TestAnalyzeResume_Deterministic(t *testing.T) {
	c := newTestCritic(t)

	inputs := [][3]string{
		{retailResume, "", ""},
		{unprofessionalRetailResume, "", ""},
		{techResume, techJobDescription, ""},
		{techResume, "", "finance_accounting"},
	}
	for _, in := range inputs {
		first, err := c.AnalyzeResume(in[0], in[1], in[2])
		require.NoError(t, err)
		firstJSON, err := json.Marshal(first)
		require.NoError(t, err)

		for range 5 {
			again, err := c.AnalyzeResume(in[0], in[1], in[2])
			require.NoError(t, err)
			againJSON, err := json.Marshal(again)
			require.NoError(t, err)
			assert.Equal(t, string(firstJSON), string(againJSON))
		}
	}
}

func TestAnalyzeResume_ScoreBoundsAndListLimits(t *testing.T) {
	c := newTestCritic(t)

	resumes := []string{
		"x",
		"lol dude gonna wanna yeah!!! got fired, terrible boss, hated my job, damn, took a year off to chill. dude420@mail.com",
		retailResume,
		unprofessionalRetailResume,
		techResume,
		techResume + "\ngithub.com/samr portfolio projects 45% $1.2M 300 users\n",
	}
	coverage := regexp.MustCompile(`^(\d+% \(\d+/\d+\)|—)$`)

	for _, resume := range resumes {
		for _, jd := range []string{"", techJobDescription} {
			result, err := c.AnalyzeResume(resume, jd, "")
			require.NoError(t, err)

			assert.GreaterOrEqual(t, result.OverallScore, minScore)
			assert.LessOrEqual(t, result.OverallScore, maxScore)
			assert.Regexp(t, coverage, result.KeywordAnalysis.KeywordCoverage)

			for _, list := range [][]string{result.Strengths, result.AreasForImprovement, result.Recommendations} {
				assert.NotEmpty(t, list)
				assert.LessOrEqual(t, len(list), maxFeedbackItems)
			}
			assert.Len(t, result.FormattingFeedback.Suggestions, 3)
		}
	}
}

func TestAnalyzeResume_ConcurrentUse(t *testing.T) {
	c := newTestCritic(t)
	want, err := c.AnalyzeResume(techResume, techJobDescription, "")
	require.NoError(t, err)

	done := make(chan int, 8)
	for range 8 {
		go func() {
			got, err := c.AnalyzeResume(techResume, techJobDescription, "")
			if err != nil {
				done <- -1
				return
			}
			done <- got.OverallScore
		}()
	}
	for range 8 {
		assert.Equal(t, want.OverallScore, <-done)
	}
}

func BenchmarkAnalyzeResume(b *testing.B) {
	reg := MustDefaultRegistry()
	c := New(reg)

	for b.Loop() {
		_, _ = c.AnalyzeResume(retailResume, techJobDescription, "")
	}
}
