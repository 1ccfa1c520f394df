package critic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_Fallbacks(t *testing.T) {
	reg := MustDefaultRegistry()
	bank := reg.Fallback()

	empty := Generate(&Signals{Industry: Unknown}, 40, bank)
	assert.Equal(t, []string{fallbackStrength}, empty.Strengths)

	fb := Generate(&Signals{Industry: Unknown, Quantified: 5}, 60, bank)
	assert.Equal(t, []string{fallbackImprovement}, fb.Improvements)
	assert.Equal(t, bank.Advice, fb.Recommendations)
	assert.Len(t, fb.Suggestions, 3)

	strong := Generate(&Signals{Industry: Unknown, Quantified: 5}, 90, bank)
	assert.Equal(t, []string{fallbackStrongResume}, strong.Improvements)
}

func TestGenerate_StrengthOrder(t *testing.T) {
	bank := MustDefaultRegistry().Lookup("technology")
	s := &Signals{
		Industry:        "technology",
		SectionsPresent: []string{"Experience", "Skills"},
		Found:           []string{"Go", "SQL", "Docker", "Git"},
		HasYear:         true,
		Quantified:      3,
		HasRepository:   true,
	}

	fb := Generate(s, 70, bank)

	assert.Len(t, fb.Strengths, 4)
	assert.True(t, strings.HasPrefix(fb.Strengths[0], "Includes key sections: Experience, Skills"))
	assert.Contains(t, fb.Strengths[1], "Go, SQL, Docker")
	assert.NotContains(t, fb.Strengths[1], "Git")
	assert.Contains(t, fb.Strengths[2], "timeline")
	assert.Contains(t, fb.Strengths[3], "3 found")
}

func TestGenerate_ImprovementsKeepProfessionalismNudge(t *testing.T) {
	bank := MustDefaultRegistry().Lookup("technology")
	s := &Signals{
		Industry:            "technology",
		SectionsMissing:     []string{"Skills"},
		Suggested:           []string{"Kubernetes"},
		SuggestedFromJD:     true,
		Quantified:          0,
		UnprofessionalEmail: true,
		RedFlagKinds:        []FlagKind{FlagTone, FlagGap},
	}

	fb := Generate(s, 30, bank)

	assert.Equal(t, []string{
		"Add missing sections: Skills",
		jdTermsPrefix + "Kubernetes",
		repositoryNudge,
		emailNudge,
	}, fb.Improvements)

	// The quantify improvement was displaced, so it moves to recommendations.
	assert.Contains(t, fb.Recommendations, quantifyRecommend)
	assert.Contains(t, fb.Recommendations, repositoryRecommend)
	assert.LessOrEqual(t, len(fb.Recommendations), maxFeedbackItems)
}

func TestGenerate_QuantifyNotRepeated(t *testing.T) {
	bank := MustDefaultRegistry().Lookup("education")
	s := &Signals{Industry: "education", Quantified: 1}

	fb := Generate(s, 60, bank)

	assert.Equal(t, []string{quantifyImprovement}, fb.Improvements)
	assert.NotContains(t, fb.Recommendations, quantifyRecommend)
	assert.Equal(t, bank.Advice, fb.Recommendations)
}

func TestGenerate_Formatting(t *testing.T) {
	bank := MustDefaultRegistry().Fallback()

	sparse := Generate(&Signals{NonBlankLines: 12, BulletLines: 2}, 50, bank)
	assert.Contains(t, sparse.Structure, "12 non-blank lines")
	assert.Contains(t, sparse.Readability, "2 bullet lines")

	dense := Generate(&Signals{NonBlankLines: 21, BulletLines: 5}, 50, bank)
	assert.Equal(t, structuredFeedback, dense.Structure)
	assert.Equal(t, bulletFeedback, dense.Readability)
}
