package common

import (
	"fmt"
	"slices"
	"strings"
)

// AutoIndustry asks the critic to detect the industry
const AutoIndustry = "auto"

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ValidateConcurrency checks the CLI worker count
func ValidateConcurrency(n int) error {
	if n < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", n)
	}
	return nil
}

// NormalizeIndustry maps a user-supplied industry selector to the critic's form.
// "auto" and blank select detection and come back empty.
func NormalizeIndustry(industry string) string {
	industry = strings.ToLower(strings.TrimSpace(industry))
	if industry == AutoIndustry {
		return ""
	}
	return industry
}
