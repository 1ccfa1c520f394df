package critic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokens(t *testing.T) {
	tokens := Tokens("Shipped C++, CI/CD and Node.js. Owned P&L; wrote C# tools - 2021/")

	for _, want := range []string{"c++", "ci/cd", "node.js", "p&l", "c#", "tools", "shipped"} {
		assert.Contains(t, tokens, want)
	}
	assert.NotContains(t, tokens, "node.js.")
	assert.NotContains(t, tokens, "2021")

	set := newTokenSet(tokens)
	assert.True(t, set.has("ci"))
	assert.True(t, set.has("cd"))
}

func TestAnalyzer_FoundTerms(t *testing.T) {
	reg := MustDefaultRegistry()
	a := NewAnalyzer(reg)

	tests := []struct {
		name     string
		industry string
		text     string
		want     []string
		notWant  []string
	}{
		{
			name:     "compound tokens",
			industry: "technology",
			text:     "Skills: C++, C#, CI/CD, Node.js",
			want:     []string{"C++", "C#", "CI/CD", "Node.js"},
		},
		{
			name:     "whole tokens only",
			industry: "technology",
			text:     "Going forward I will keep restructuring the gitlab setup",
			notWant:  []string{"Go", "REST", "Git"},
		},
		{
			name:     "multi-word phrase",
			industry: "healthcare",
			text:     "Provided patient care and medication administration on a med-surg floor",
			want:     []string{"Patient Care", "Medication Administration", "Med-Surg"},
		},
		{
			name:     "phrase words apart do not count",
			industry: "healthcare",
			text:     "Patient transport and general care",
			notWant:  []string{"Patient Care"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := a.Analyze(tt.text, reg.Lookup(tt.industry), "")
			for _, w := range tt.want {
				assert.Contains(t, s.Found, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, s.Found, w)
			}
		})
	}
}

func TestAnalyzer_SectionsAndContact(t *testing.T) {
	reg := MustDefaultRegistry()
	s := NewAnalyzer(reg).Analyze(retailResume, reg.Lookup("service_retail"), "")

	assert.Equal(t, []string{"Experience", "Skills", "Education"}, s.SectionsPresent)
	assert.Empty(t, s.SectionsMissing)
	assert.True(t, s.HasEmail)
	assert.True(t, s.HasPhone)
	assert.False(t, s.HasLinkedIn)
	assert.True(t, s.HasYear)
	assert.Equal(t, 7, s.BulletLines)
	assert.GreaterOrEqual(t, s.TokenCount, minTokens)
	assert.Zero(t, s.RedFlagPenalty)
	assert.Empty(t, s.RedFlagKinds)
}

func TestAnalyzer_MissingSections(t *testing.T) {
	reg := MustDefaultRegistry()
	s := NewAnalyzer(reg).Analyze("Experience only. No other headings here.", reg.Fallback(), "")

	assert.Equal(t, []string{"Experience"}, s.SectionsPresent)
	assert.Equal(t, []string{"Skills", "Education"}, s.SectionsMissing)
}

func TestAnalyzer_RedFlagPenalty(t *testing.T) {
	reg := MustDefaultRegistry()
	a := NewAnalyzer(reg)
	bulleted := "\n- one\n- two\n- three\n"
	long := strings.Repeat("managed store inventory daily ", 40)

	tests := []struct {
		name      string
		text      string
		want      int
		wantKinds []FlagKind
		badEmail  bool
	}{
		{name: "clean and long", text: long + bulleted, want: 0},
		{name: "short resume", text: "Experience" + bulleted, want: shortResumePenalty},
		{name: "short and few bullets", text: "Experience", want: shortResumePenalty + fewBulletsPenalty},
		{name: "one pattern", text: long + bulleted + "gonna do great", want: redFlagStep, wantKinds: []FlagKind{FlagTone}},
		{
			name:      "gap phrasing",
			text:      long + bulleted + "Took a year off to chill.",
			want:      redFlagStep,
			wantKinds: []FlagKind{FlagGap},
		},
		{
			name:      "unprofessional email",
			text:      long + bulleted + "partyanimal@example.com",
			want:      badEmailPenalty,
			badEmail:  true,
			wantKinds: nil,
		},
		{
			name:      "everything is capped",
			text:      "lol. Got fired. Terrible boss. Yeah!!! Damn. Took a year off to chill. dude420@example.com",
			want:      redFlagTotalCap,
			badEmail:  true,
			wantKinds: []FlagKind{FlagTone, FlagEmployment, FlagGap, FlagProfanity},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := a.Analyze(tt.text, reg.Fallback(), "")
			assert.Equal(t, tt.want, s.RedFlagPenalty)
			assert.Equal(t, tt.wantKinds, s.RedFlagKinds)
			assert.Equal(t, tt.badEmail, s.UnprofessionalEmail)
		})
	}
}

func TestAnalyzer_Repository(t *testing.T) {
	reg := MustDefaultRegistry()
	a := NewAnalyzer(reg)
	bank := reg.Lookup("technology")

	assert.True(t, a.Analyze("see https://gitlab.com/me/tool", bank, "").HasRepository)
	assert.True(t, a.Analyze("Side projects include a chess engine", bank, "").HasRepository)
	assert.False(t, a.Analyze("Projected revenue growth", bank, "").HasRepository)
}

func TestAnalyzer_Suggestions(t *testing.T) {
	reg := MustDefaultRegistry()
	a := NewAnalyzer(reg)
	bank := reg.Lookup("technology")

	noJD := a.Analyze("Python and Django developer", bank, "")
	assert.False(t, noJD.SuggestedFromJD)
	assert.Equal(t, []string{"Flask", "Pandas"}, noJD.Suggested)

	withJD := a.Analyze("Python and Django developer", bank, "Python, Flask and AWS required")
	assert.True(t, withJD.HasJobDescription)
	assert.True(t, withJD.SuggestedFromJD)
	assert.Equal(t, []string{"Python", "Flask", "AWS"}, withJD.JDTerms)
	assert.Equal(t, []string{"Flask", "AWS"}, withJD.Suggested)

	many := a.Analyze("Python JavaScript Docker AWS SQL", bank, "")
	assert.Len(t, many.Suggested, maxAdjacencyTerms)
}
