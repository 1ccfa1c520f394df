package critic

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[a-z][a-z0-9+\-/&.#]*`)

// Tokens splits text into lower-cased word-like tokens. Compound forms such as
// "c++", "ci/cd" and "node.js" stay whole; trailing punctuation is trimmed.
func Tokens(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = strings.TrimRight(tok, ".-/")
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// tokenSet is the case-folded vocabulary of one text.
type tokenSet map[string]struct{}

func newTokenSet(tokens []string) tokenSet {
	set := make(tokenSet, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
		if strings.Contains(tok, "/") {
			for _, part := range strings.Split(tok, "/") {
				if part != "" {
					set[part] = struct{}{}
				}
			}
		}
	}
	return set
}

func (s tokenSet) has(tok string) bool {
	_, ok := s[tok]
	return ok
}

// corpus pairs a text's token set with its lower-cased form for phrase matching.
type corpus struct {
	lower  string
	tokens tokenSet
	count  int
}

func newCorpus(text string) corpus {
	tokens := Tokens(text)
	return corpus{
		lower:  strings.ToLower(text),
		tokens: newTokenSet(tokens),
		count:  len(tokens),
	}
}

func (c corpus) contains(t term) bool {
	if t.phrase != nil {
		return t.phrase.MatchString(c.lower)
	}
	return c.tokens.has(t.lower)
}
