package critic

import (
	"regexp"
	"strings"
)

const (
	minTokens          = 120
	minBulletLines     = 3
	maxAdjacencyTerms  = 5
	redFlagStep        = -8
	redFlagPatternCap  = -30
	badEmailPenalty    = -10
	shortResumePenalty = -10
	fewBulletsPenalty  = -8
	redFlagTotalCap    = -30
)

// FlagKind groups red-flag patterns for feedback wording.
type FlagKind string

const (
	FlagTone       FlagKind = "tone"
	FlagEmployment FlagKind = "employment"
	FlagGap        FlagKind = "gap"
	FlagProfanity  FlagKind = "profanity"
)

type redFlag struct {
	kind    FlagKind
	pattern *regexp.Regexp
}

// Applied to lower-cased text.
var redFlags = []redFlag{
	{FlagTone, regexp.MustCompile(`\b(gonna|wanna|gotta|kinda|sorta|lol|lmao|omg|dude|bro|ya'?ll|ain'?t)\b`)},
	{FlagEmployment, regexp.MustCompile(`\b(got|was|been|getting) (fired|canned|sacked|axed)\b`)},
	{FlagEmployment, regexp.MustCompile(`\b(terrible|awful|horrible|stupid|useless|toxic|crazy|lazy) (boss|bosses|manager|managers|supervisor|coworkers?|co-workers?|company|team)\b`)},
	{FlagEmployment, regexp.MustCompile(`\b(hated|hate) (my|the|that) (job|boss|manager|work|company)\b`)},
	{FlagTone, regexp.MustCompile(`\b(yeah|yep|nope|whatever|haha+|hehe|meh)\b|!{2,}`)},
	{FlagGap, regexp.MustCompile(`\b(took|taking|spent) (a |some )?(year|years|time|months?|while) (off )?(to |just )?(chill|chilling|party|partying|relax|relaxing|do nothing|figure (it|things|stuff) out)\b|\bgap year\b`)},
	{FlagProfanity, regexp.MustCompile(`\b(damn|crap|sucks?|sucked|wtf|shit|hell)\b`)},
}

var unprofessionalEmailParts = []string{
	"dude", "420", "sexy", "party", "cool", "babe", "lol", "kush", "stoner", "hottie",
}

var repositoryTokens = []string{"github", "portfolio", "repo", "repository", "project", "projects"}

var (
	emailPattern      = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern      = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	quantifiedPattern = regexp.MustCompile(`\d+(?:\.\d+)?%|[$€£]\s?\d[\d,]*(?:\.\d+)?[kKmM]?|\b\d{2,}\b`)
	yearPattern       = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	bulletPattern     = regexp.MustCompile(`^\s*(?:[-*•·▪‣◦–]|\d+[.)])\s+`)
	codeHostPattern   = regexp.MustCompile(`(?i)\b(?:github\.com|gitlab\.com|bitbucket\.org|codeberg\.org|behance\.net|dribbble\.com)/`)
)

// Signals is everything the scorer and feedback generator need to know about one resume.
type Signals struct {
	Industry string

	WordCount     int
	LineCount     int
	NonBlankLines int
	TokenCount    int
	BulletLines   int

	HasEmail    bool
	HasPhone    bool
	HasLinkedIn bool
	HasGitHub   bool

	Found           []string
	SectionsPresent []string
	SectionsMissing []string

	Quantified    int
	HasYear       bool
	HasRepository bool

	RedFlagPenalty      int
	RedFlagPatterns     int
	RedFlagKinds        []FlagKind
	UnprofessionalEmail bool

	HasJobDescription bool
	JDTerms           []string
	Suggested         []string
	SuggestedFromJD   bool
}

// HasFlag reports whether any matched red-flag pattern is of kind k.
func (s *Signals) HasFlag(k FlagKind) bool {
	for _, kind := range s.RedFlagKinds {
		if kind == k {
			return true
		}
	}
	return false
}

// FlagNames returns the matched red-flag kinds as strings; nil-safe.
func (s *Signals) FlagNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.RedFlagKinds))
	for i, k := range s.RedFlagKinds {
		names[i] = string(k)
	}
	return names
}

// Analyzer extracts Signals from resume text against a keyword bank.
type Analyzer struct {
	registry *Registry
}

// NewAnalyzer returns an analyzer that draws adjacency suggestions from reg.
func NewAnalyzer(reg *Registry) *Analyzer {
	return &Analyzer{registry: reg}
}

// Analyze is a pure function of its inputs.
func (a *Analyzer) Analyze(text string, bank *KeywordBank, jobDescription string) *Signals {
	resume := newCorpus(text)
	s := &Signals{
		Industry:   bank.Name,
		WordCount:  len(strings.Fields(text)),
		TokenCount: resume.count,
	}

	lines := strings.Split(text, "\n")
	s.LineCount = len(lines)
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		s.NonBlankLines++
		if bulletPattern.MatchString(line) {
			s.BulletLines++
		}
	}

	emails := emailPattern.FindAllString(text, -1)
	s.HasEmail = len(emails) > 0
	s.HasPhone = phonePattern.MatchString(text)
	s.HasLinkedIn = strings.Contains(resume.lower, "linkedin")
	s.HasGitHub = strings.Contains(resume.lower, "github")

	for _, t := range bank.terms {
		if resume.contains(t) {
			s.Found = append(s.Found, t.display)
		}
	}

	for i, section := range bank.RequiredSections {
		if bank.sections[i].MatchString(text) {
			s.SectionsPresent = append(s.SectionsPresent, section)
		} else {
			s.SectionsMissing = append(s.SectionsMissing, section)
		}
	}

	s.Quantified = len(quantifiedPattern.FindAllString(text, -1))
	s.HasYear = yearPattern.MatchString(text)
	s.HasRepository = hasRepositorySignal(text, resume.tokens)

	s.UnprofessionalEmail = hasUnprofessionalEmail(emails)
	s.RedFlagPenalty = a.redFlagPenalty(s, resume)

	if strings.TrimSpace(jobDescription) != "" {
		s.HasJobDescription = true
		s.SuggestedFromJD = true
		jd := newCorpus(jobDescription)
		found := make(map[string]struct{}, len(s.Found))
		for _, f := range s.Found {
			found[f] = struct{}{}
		}
		for _, t := range bank.terms {
			if !jd.contains(t) {
				continue
			}
			s.JDTerms = append(s.JDTerms, t.display)
			if _, ok := found[t.display]; !ok {
				s.Suggested = append(s.Suggested, t.display)
			}
		}
	} else {
		s.Suggested = a.adjacentSuggestions(s.Found, resume)
	}

	return s
}

// redFlagPenalty also records which pattern kinds matched.
func (a *Analyzer) redFlagPenalty(s *Signals, resume corpus) int {
	seenKinds := make(map[FlagKind]bool)
	for _, flag := range redFlags {
		if !flag.pattern.MatchString(resume.lower) {
			continue
		}
		s.RedFlagPatterns++
		if !seenKinds[flag.kind] {
			seenKinds[flag.kind] = true
			s.RedFlagKinds = append(s.RedFlagKinds, flag.kind)
		}
	}

	penalty := max(redFlagStep*s.RedFlagPatterns, redFlagPatternCap)
	if s.UnprofessionalEmail {
		penalty += badEmailPenalty
	}
	if resume.count < minTokens {
		penalty += shortResumePenalty
	}
	if s.BulletLines < minBulletLines {
		penalty += fewBulletsPenalty
	}
	return max(penalty, redFlagTotalCap)
}

func (a *Analyzer) adjacentSuggestions(found []string, resume corpus) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, f := range found {
		for _, rel := range a.registry.related(f) {
			if len(out) == maxAdjacencyTerms {
				return out
			}
			if _, dup := seen[rel.lower]; dup || resume.contains(rel) {
				continue
			}
			seen[rel.lower] = struct{}{}
			out = append(out, rel.display)
		}
	}
	return out
}

func hasRepositorySignal(text string, tokens tokenSet) bool {
	if codeHostPattern.MatchString(text) {
		return true
	}
	for _, tok := range repositoryTokens {
		if tokens.has(tok) {
			return true
		}
	}
	return false
}

func hasUnprofessionalEmail(emails []string) bool {
	for _, email := range emails {
		local, _, _ := strings.Cut(strings.ToLower(email), "@")
		for _, part := range unprofessionalEmailParts {
			if strings.Contains(local, part) {
				return true
			}
		}
	}
	return false
}
