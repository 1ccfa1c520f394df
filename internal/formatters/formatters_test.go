package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"resumecritic/internal/types"
)

func sampleResult() types.AnalysisResult {
	return types.AnalysisResult{
		Industry:     "technology",
		OverallScore: 72,
		KeywordAnalysis: types.KeywordAnalysis{
			FoundKeywords:     []string{"Go", "Docker"},
			SuggestedKeywords: []string{"Kubernetes"},
			KeywordCoverage:   "50% (2/4)",
		},
		Strengths:           []string{"Includes key sections: Experience, Skills"},
		AreasForImprovement: []string{"Add missing sections: Education"},
		FormattingFeedback: types.FormattingFeedback{
			Structure:   "Clear structure",
			Readability: "Good use of bullet points",
			Suggestions: []string{"Keep it to one or two pages"},
		},
		Recommendations: []string{"Link a GitHub profile"},
		Stats:           types.ResumeStats{WordCount: 300, LineCount: 25, HasEmail: true},
	}
}

func TestFormatAnalysis(t *testing.T) {
	registry := NewFormatterRegistry()
	result := sampleResult()

	tests := []struct {
		format   string
		contains []string
	}{
		{format: "text", contains: []string{
			"=== RESUME CRITIQUE ===", "Overall Score: 72/100", "Coverage: 50% (2/4)",
			"Suggested: Kubernetes", "- Add missing sections: Education", "1. Link a GitHub profile",
			"Email: yes  Phone: no",
		}},
		{format: "markdown", contains: []string{
			"# Resume Critique", "**Overall Score:** 72/100", "## Strengths", "## Areas for Improvement",
			"| 300 | 25 | yes | no |",
		}},
		{format: "json", contains: []string{`"overallScore": 72`, `"keywordCoverage": "50% (2/4)"`}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			for _, data := range []any{result, &result} {
				out, err := registry.Format(data, tt.format)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				for _, want := range tt.contains {
					if !strings.Contains(out, want) {
						t.Errorf("%s output missing %q:\n%s", tt.format, want, out)
					}
				}
			}
		})
	}
}

func TestFormatNoteAndEmptyKeywords(t *testing.T) {
	result := sampleResult()
	result.KeywordAnalysis = types.KeywordAnalysis{KeywordCoverage: "—", Note: "Add a job description to measure coverage."}

	out, err := GlobalRegistry.Format(result, "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Coverage: —", "Note: Add a job description", "Found: none"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestFormatBatch(t *testing.T) {
	result := sampleResult()
	items := []types.BatchAnalysisItem{
		{Source: "a.pdf", Result: &result},
		{Source: "b.png", Error: "unsupported file type: image/png"},
	}

	text, err := GlobalRegistry.Format(items, "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, ">>> a.pdf") || !strings.Contains(text, "Error: unsupported file type") {
		t.Errorf("unexpected batch text:\n%s", text)
	}

	md, err := GlobalRegistry.Format(items, "markdown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(md, "## b.png") || !strings.Contains(md, "### Resume Critique") {
		t.Errorf("unexpected batch markdown:\n%s", md)
	}

	raw, err := GlobalRegistry.Format(items, "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded []types.BatchAnalysisItem
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(decoded) != 2 || decoded[1].Result != nil {
		t.Errorf("unexpected decoded batch: %+v", decoded)
	}
}

func TestFormatIndustries(t *testing.T) {
	industries := []types.IndustryInfo{
		{Name: "technology", Label: "Technology", RequiredSections: []string{"Experience", "Skills"}},
	}

	out, err := GlobalRegistry.Format(industries, "markdown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "| technology | Technology | Experience, Skills |") {
		t.Errorf("unexpected industries markdown:\n%s", out)
	}
}

func TestFormatUnknown(t *testing.T) {
	if _, err := GlobalRegistry.Format(sampleResult(), "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := GlobalRegistry.Format(42, "text"); err == nil {
		t.Error("expected error for text formatting of an unsupported type")
	}
}

func TestGetSupportedFormats(t *testing.T) {
	got := strings.Join(GlobalRegistry.GetSupportedFormats(), ",")
	if got != "json,markdown,text" {
		t.Errorf("unexpected formats: %s", got)
	}
}
