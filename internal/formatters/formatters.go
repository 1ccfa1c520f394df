package formatters

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"resumecritic/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

const (
	typeAny        = "any"
	typeAnalysis   = "AnalysisResult"
	typeBatch      = "BatchAnalysis"
	typeIndustries = "Industries"
)

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", typeAny, &JSONFormatter{})
	registry.RegisterFormatter("text", typeAnalysis, &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", typeAnalysis, &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", typeBatch, &BatchTextFormatter{})
	registry.RegisterFormatter("markdown", typeBatch, &BatchMarkdownFormatter{})
	registry.RegisterFormatter("text", typeIndustries, &IndustriesTextFormatter{})
	registry.RegisterFormatter("markdown", typeIndustries, &IndustriesMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	if r, ok := data.(*types.AnalysisResult); ok && r != nil {
		data = *r
	}
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters[typeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats in sorted order
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	return slices.Sorted(maps.Keys(fr.formatters))
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisResult:
		return typeAnalysis
	case []types.BatchAnalysisItem:
		return typeBatch
	case []types.IndustryInfo:
		return typeIndustries
	default:
		return typeAny
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return typeAny
}

// AnalysisTextFormatter renders a critique as plain text
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}
	var output strings.Builder
	writeAnalysisText(&output, result)
	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return typeAnalysis
}

func writeAnalysisText(output *strings.Builder, result types.AnalysisResult) {
	output.WriteString("=== RESUME CRITIQUE ===\n\n")
	fmt.Fprintf(output, "Industry: %s\n", result.Industry)
	fmt.Fprintf(output, "Overall Score: %d/100\n", result.OverallScore)
	fmt.Fprintf(output, "Words: %d  Lines: %d  Email: %s  Phone: %s\n\n",
		result.Stats.WordCount, result.Stats.LineCount, yesNo(result.Stats.HasEmail), yesNo(result.Stats.HasPhone))

	output.WriteString("=== KEYWORDS ===\n")
	fmt.Fprintf(output, "Coverage: %s\n", result.KeywordAnalysis.KeywordCoverage)
	if result.KeywordAnalysis.Note != "" {
		fmt.Fprintf(output, "Note: %s\n", result.KeywordAnalysis.Note)
	}
	fmt.Fprintf(output, "Found: %s\n", joinOrNone(result.KeywordAnalysis.FoundKeywords))
	fmt.Fprintf(output, "Suggested: %s\n\n", joinOrNone(result.KeywordAnalysis.SuggestedKeywords))

	writeTextList(output, "STRENGTHS", result.Strengths)
	writeTextList(output, "AREAS FOR IMPROVEMENT", result.AreasForImprovement)

	output.WriteString("=== FORMATTING ===\n")
	fmt.Fprintf(output, "Structure: %s\n", result.FormattingFeedback.Structure)
	fmt.Fprintf(output, "Readability: %s\n", result.FormattingFeedback.Readability)
	for _, s := range result.FormattingFeedback.Suggestions {
		fmt.Fprintf(output, "- %s\n", s)
	}
	output.WriteString("\n")

	if len(result.Recommendations) > 0 {
		output.WriteString("=== RECOMMENDATIONS ===\n")
		for i, r := range result.Recommendations {
			fmt.Fprintf(output, "%d. %s\n", i+1, r)
		}
	}
}

func writeTextList(output *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(output, "=== %s ===\n", title)
	for _, item := range items {
		fmt.Fprintf(output, "- %s\n", item)
	}
	output.WriteString("\n")
}

// AnalysisMarkdownFormatter renders a critique as markdown
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}
	var output strings.Builder
	writeAnalysisMarkdown(&output, result, "#")
	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return typeAnalysis
}

// writeAnalysisMarkdown writes the critique with headings nested under level
func writeAnalysisMarkdown(output *strings.Builder, result types.AnalysisResult, level string) {
	fmt.Fprintf(output, "%s Resume Critique\n\n", level)
	fmt.Fprintf(output, "**Industry:** %s  \n", result.Industry)
	fmt.Fprintf(output, "**Overall Score:** %d/100\n\n", result.OverallScore)

	fmt.Fprintf(output, "| Words | Lines | Email | Phone |\n|---|---|---|---|\n| %d | %d | %s | %s |\n\n",
		result.Stats.WordCount, result.Stats.LineCount, yesNo(result.Stats.HasEmail), yesNo(result.Stats.HasPhone))

	sub := level + "#"
	fmt.Fprintf(output, "%s Keywords\n\n", sub)
	fmt.Fprintf(output, "**Coverage:** %s\n\n", result.KeywordAnalysis.KeywordCoverage)
	if result.KeywordAnalysis.Note != "" {
		fmt.Fprintf(output, "_%s_\n\n", result.KeywordAnalysis.Note)
	}
	fmt.Fprintf(output, "**Found:** %s\n\n", joinOrNone(result.KeywordAnalysis.FoundKeywords))
	fmt.Fprintf(output, "**Suggested:** %s\n\n", joinOrNone(result.KeywordAnalysis.SuggestedKeywords))

	writeMarkdownList(output, sub+" Strengths", result.Strengths)
	writeMarkdownList(output, sub+" Areas for Improvement", result.AreasForImprovement)

	fmt.Fprintf(output, "%s Formatting\n\n", sub)
	fmt.Fprintf(output, "- **Structure:** %s\n", result.FormattingFeedback.Structure)
	fmt.Fprintf(output, "- **Readability:** %s\n", result.FormattingFeedback.Readability)
	for _, s := range result.FormattingFeedback.Suggestions {
		fmt.Fprintf(output, "- %s\n", s)
	}
	output.WriteString("\n")

	if len(result.Recommendations) > 0 {
		fmt.Fprintf(output, "%s Recommendations\n\n", sub)
		for i, r := range result.Recommendations {
			fmt.Fprintf(output, "%d. %s\n", i+1, r)
		}
		output.WriteString("\n")
	}
}

func writeMarkdownList(output *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(output, "%s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(output, "- %s\n", item)
	}
	output.WriteString("\n")
}

// BatchTextFormatter renders results for several resumes as plain text
type BatchTextFormatter struct{}

func (btf *BatchTextFormatter) Format(data any) (string, error) {
	items, ok := data.([]types.BatchAnalysisItem)
	if !ok {
		return "", fmt.Errorf("expected []BatchAnalysisItem, got %T", data)
	}

	var output strings.Builder
	for i, item := range items {
		if i > 0 {
			output.WriteString("\n")
		}
		fmt.Fprintf(&output, ">>> %s\n", item.Source)
		if item.Error != "" {
			fmt.Fprintf(&output, "Error: %s\n", item.Error)
			continue
		}
		if item.Result != nil {
			writeAnalysisText(&output, *item.Result)
		}
	}
	return output.String(), nil
}

func (btf *BatchTextFormatter) SupportedType() string {
	return typeBatch
}

// BatchMarkdownFormatter renders results for several resumes as markdown
type BatchMarkdownFormatter struct{}

func (bmf *BatchMarkdownFormatter) Format(data any) (string, error) {
	items, ok := data.([]types.BatchAnalysisItem)
	if !ok {
		return "", fmt.Errorf("expected []BatchAnalysisItem, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Resume Critiques\n\n")
	for _, item := range items {
		fmt.Fprintf(&output, "## %s\n\n", item.Source)
		if item.Error != "" {
			fmt.Fprintf(&output, "**Error:** %s\n\n", item.Error)
			continue
		}
		if item.Result != nil {
			writeAnalysisMarkdown(&output, *item.Result, "###")
		}
	}
	return output.String(), nil
}

func (bmf *BatchMarkdownFormatter) SupportedType() string {
	return typeBatch
}

// IndustriesTextFormatter lists registered industries as plain text
type IndustriesTextFormatter struct{}

func (itf *IndustriesTextFormatter) Format(data any) (string, error) {
	industries, ok := data.([]types.IndustryInfo)
	if !ok {
		return "", fmt.Errorf("expected []IndustryInfo, got %T", data)
	}

	var output strings.Builder
	for _, ind := range industries {
		fmt.Fprintf(&output, "%-20s %-28s %s\n", ind.Name, ind.Label, strings.Join(ind.RequiredSections, ", "))
	}
	return output.String(), nil
}

func (itf *IndustriesTextFormatter) SupportedType() string {
	return typeIndustries
}

// IndustriesMarkdownFormatter lists registered industries as a markdown table
type IndustriesMarkdownFormatter struct{}

func (imf *IndustriesMarkdownFormatter) Format(data any) (string, error) {
	industries, ok := data.([]types.IndustryInfo)
	if !ok {
		return "", fmt.Errorf("expected []IndustryInfo, got %T", data)
	}

	var output strings.Builder
	output.WriteString("| Name | Label | Required Sections |\n|---|---|---|\n")
	for _, ind := range industries {
		fmt.Fprintf(&output, "| %s | %s | %s |\n", ind.Name, ind.Label, strings.Join(ind.RequiredSections, ", "))
	}
	return output.String(), nil
}

func (imf *IndustriesMarkdownFormatter) SupportedType() string {
	return typeIndustries
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
