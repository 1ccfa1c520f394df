package types

// AnalyzeResumeInput represents the input for critiquing a resume
type AnalyzeResumeInput struct {
	ResumeText     string `json:"resumeText" validate:"required"`
	JobDescription string `json:"jobDescription,omitempty"`
	Industry       string `json:"industry,omitempty" validate:"omitempty,max=64"`
}

// KeywordAnalysis reports which bank terms were found and which are worth adding
type KeywordAnalysis struct {
	FoundKeywords     []string `json:"foundKeywords"`
	SuggestedKeywords []string `json:"suggestedKeywords"`
	KeywordCoverage   string   `json:"keywordCoverage"` // "<pct>% (<found>/<universe>)" or "—"
	Note              string   `json:"note,omitempty"`
}

// FormattingFeedback describes layout quality
type FormattingFeedback struct {
	Structure   string   `json:"structure"`
	Readability string   `json:"readability"`
	Suggestions []string `json:"suggestions"`
}

// ResumeStats holds simple document measurements shown next to the critique
type ResumeStats struct {
	WordCount int  `json:"wordCount"`
	LineCount int  `json:"lineCount"`
	HasEmail  bool `json:"hasEmail"`
	HasPhone  bool `json:"hasPhone"`
}

// AnalysisResult represents the full critique of one resume
type AnalysisResult struct {
	Industry            string             `json:"industry"`
	OverallScore        int                `json:"overallScore"` // always within [5, 95]
	KeywordAnalysis     KeywordAnalysis    `json:"keywordAnalysis"`
	Strengths           []string           `json:"strengths"`
	AreasForImprovement []string           `json:"areasForImprovement"`
	FormattingFeedback  FormattingFeedback `json:"formattingFeedback"`
	Recommendations     []string           `json:"recommendations"`
	Stats               ResumeStats        `json:"stats"`
}

// IndustryInfo describes one registered industry
type IndustryInfo struct {
	Name             string   `json:"name"`
	Label            string   `json:"label"`
	RequiredSections []string `json:"requiredSections"`
}

// BatchAnalysisItem is one entry of a multi-file CLI run
type BatchAnalysisItem struct {
	Source string          `json:"source"`
	Result *AnalysisResult `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}
