package critic

import (
	"fmt"
	"slices"
	"strings"
)

const (
	maxFeedbackItems    = 4
	lowQuantifiedCount  = 2
	structuredLineCount = 20
	readableBulletCount = 5
	strongScore         = 80
	technologyIndustry  = "technology"
)

// Fixed feedback sentences.
const (
	quantifyImprovement = "Quantify outcomes with numbers (%, $, time saved, team or customer counts)"
	repositoryNudge     = "Link a GitHub profile or portfolio that shows hands-on projects"
	repositoryRecommend = "Add a repository link (GitHub, GitLab) next to your contact details"
	quantifyRecommend   = `Add metrics to your bullets, e.g. "Raised retention by 12%" or "Cut costs by $75k"`
	emailNudge          = "Use a professional email address, ideally based on your name"
	toneNudge           = "Keep the tone professional: drop slang, casual asides and complaints about past employers"
	gapNudge            = "Describe employment gaps briefly and factually"
	jdTermsPrefix       = "Work in terms from the job description: "
	relatedTermsPrefix  = "Consider related skills if you have them: "

	fallbackStrength       = "Resume text is readable and ready for screening"
	fallbackImprovement    = "Tailor examples to the specific role you are targeting"
	fallbackStrongResume   = "No major gaps found; tailor examples to each role you apply for"
	fallbackRecommendation = "Re-run the analysis after revising for the target role"
	structuredFeedback     = "Mostly structured: content is broken into distinct lines and sections"
	bulletFeedback         = "Has bullet points that make achievements easy to scan"
)

var styleSuggestions = []string{
	"Lead each bullet with a strong action verb (Led, Built, Reduced)",
	"Keep verb tense consistent: past tense for past roles, present tense for the current one",
	"Use one date format throughout (e.g. Jan 2021 - Mar 2023)",
}

// Feedback is the narrative part of a critique.
type Feedback struct {
	Strengths       []string
	Improvements    []string
	Structure       string
	Readability     string
	Suggestions     []string
	Recommendations []string
}

// Generate drafts feedback lists in a fixed rule order. Every list holds at most
// four items and is never empty. The score only picks the wording of the
// improvements fallback.
func Generate(s *Signals, score int, bank *KeywordBank) Feedback {
	fb := Feedback{
		Strengths:    strengths(s, bank),
		Improvements: improvements(s, score),
		Suggestions:  slices.Clone(styleSuggestions),
	}

	if s.NonBlankLines > structuredLineCount {
		fb.Structure = structuredFeedback
	} else {
		fb.Structure = fmt.Sprintf("Only %d non-blank lines; expand each section with more detail", s.NonBlankLines)
	}
	if s.BulletLines >= readableBulletCount {
		fb.Readability = bulletFeedback
	} else {
		fb.Readability = fmt.Sprintf("Found %d bullet lines; use bullet points (at least %d) so achievements are easy to scan",
			s.BulletLines, readableBulletCount)
	}

	fb.Recommendations = recommendations(s, bank, fb.Improvements)
	return fb
}

func strengths(s *Signals, bank *KeywordBank) []string {
	var out []string
	if len(s.SectionsPresent) > 0 {
		out = append(out, "Includes key sections: "+strings.Join(s.SectionsPresent, ", "))
	}
	if len(s.Found) > 0 {
		out = append(out, fmt.Sprintf("Uses %d relevant %s keywords (e.g. %s)",
			len(s.Found), bank.Label, strings.Join(s.Found[:min(3, len(s.Found))], ", ")))
	}
	if s.HasYear {
		out = append(out, "Dated entries make the career timeline easy to follow")
	}
	if s.Quantified > 0 {
		out = append(out, fmt.Sprintf("Quantified details (%d found) help demonstrate impact", s.Quantified))
	}
	return capItems(out, fallbackStrength)
}

func improvements(s *Signals, score int) []string {
	var general []string
	if len(s.SectionsMissing) > 0 {
		general = append(general, "Add missing sections: "+strings.Join(s.SectionsMissing, ", "))
	}
	if len(s.Suggested) > 0 {
		prefix := relatedTermsPrefix
		if s.SuggestedFromJD {
			prefix = jdTermsPrefix
		}
		general = append(general, prefix+strings.Join(s.Suggested, ", "))
	}
	if s.Industry == technologyIndustry && !s.HasRepository {
		general = append(general, repositoryNudge)
	}
	if s.Quantified < lowQuantifiedCount {
		general = append(general, quantifyImprovement)
	}

	nudges := professionalismNudges(s)
	if len(nudges) > 0 && len(general) >= maxFeedbackItems {
		general = general[:maxFeedbackItems-1]
	}
	fallback := fallbackImprovement
	if score >= strongScore {
		fallback = fallbackStrongResume
	}
	return capItems(append(general, nudges...), fallback)
}

func professionalismNudges(s *Signals) []string {
	var out []string
	if s.UnprofessionalEmail {
		out = append(out, emailNudge)
	}
	if s.HasFlag(FlagTone) || s.HasFlag(FlagEmployment) || s.HasFlag(FlagProfanity) {
		out = append(out, toneNudge)
	}
	if s.HasFlag(FlagGap) {
		out = append(out, gapNudge)
	}
	return out
}

func recommendations(s *Signals, bank *KeywordBank, improvements []string) []string {
	out := slices.Clone(bank.Advice)
	if s.Industry == technologyIndustry && !s.HasRepository {
		out = append(out, repositoryRecommend)
	}
	if s.Quantified < lowQuantifiedCount && !slices.Contains(improvements, quantifyImprovement) {
		out = append(out, quantifyRecommend)
	}
	return capItems(out, fallbackRecommendation)
}

func capItems(items []string, fallback string) []string {
	if len(items) == 0 {
		return []string{fallback}
	}
	if len(items) > maxFeedbackItems {
		items = items[:maxFeedbackItems]
	}
	return items
}
