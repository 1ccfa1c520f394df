package critic

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"resumecritic/internal/errors"
)

// Unknown is the industry reported when detection finds too little evidence.
const Unknown = "unknown"

//go:embed banks.yaml
var defaultBanks []byte

//go:embed banks.schema.json
var banksSchema string

// KeywordBank holds the vocabulary and section expectations of one industry.
// Banks are built once by the registry and never modified afterwards.
type KeywordBank struct {
	Name             string
	Label            string
	RequiredSections []string
	HardSkills       []string
	SoftSkills       []string
	Extras           []string
	Cues             []string
	Advice           []string

	terms    []term
	sections []*regexp.Regexp
	cues     []*regexp.Regexp
}

// Terms returns hard skills, soft skills and extras in bank order without duplicates.
func (b *KeywordBank) Terms() []string {
	out := make([]string, len(b.terms))
	for i, t := range b.terms {
		out[i] = t.display
	}
	return out
}

// IsFallback reports whether b is the bank used for unknown industries.
func (b *KeywordBank) IsFallback() bool {
	return b.Name == Unknown
}

// term is a bank keyword with its precompiled matcher.
type term struct {
	display string
	lower   string
	phrase  *regexp.Regexp // set for multi-word terms only
}

func newTerm(display string) term {
	t := term{display: display, lower: strings.ToLower(display)}
	if strings.Contains(t.lower, " ") {
		t.phrase = wholeWord(t.lower)
	}
	return t
}

// Registry is the immutable set of keyword banks.
type Registry struct {
	banks     []*KeywordBank
	index     map[string]*KeywordBank
	fallback  *KeywordBank
	adjacency map[string][]term
}

type bankFile struct {
	Version    int                 `yaml:"version"`
	Industries []bankEntry         `yaml:"industries"`
	Fallback   bankEntry           `yaml:"fallback"`
	Adjacency  map[string][]string `yaml:"adjacency"`
}

type bankEntry struct {
	Name             string   `yaml:"name"`
	Label            string   `yaml:"label"`
	RequiredSections []string `yaml:"requiredSections"`
	HardSkills       []string `yaml:"hardSkills"`
	SoftSkills       []string `yaml:"softSkills"`
	Extras           []string `yaml:"extras"`
	Cues             []string `yaml:"cues"`
	Advice           []string `yaml:"advice"`
}

// DefaultRegistry builds the registry from the embedded keyword banks.
func DefaultRegistry() (*Registry, error) {
	return LoadRegistry(defaultBanks)
}

// MustDefaultRegistry is DefaultRegistry for callers that cannot recover,
// such as tests and package-level setup. It panics on a malformed table.
func MustDefaultRegistry() *Registry {
	reg, err := DefaultRegistry()
	if err != nil {
		panic(err)
	}
	return reg
}

// LoadRegistryFile builds a registry from a YAML file on disk.
func LoadRegistryFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidKeywordBank,
			"failed to read keyword bank file", err).WithContext("path", path)
	}
	reg, err := LoadRegistry(data)
	if err != nil {
		if appErr, ok := errors.As(err); ok {
			return nil, appErr.WithContext("path", path)
		}
		return nil, err
	}
	return reg, nil
}

// LoadRegistry validates raw YAML against the bank schema and builds a registry.
func LoadRegistry(data []byte) (*Registry, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, invalidBank("keyword bank is not valid YAML", err)
	}
	if err := validateBankDocument(doc); err != nil {
		return nil, err
	}

	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, invalidBank("failed to decode keyword bank", err)
	}
	return buildRegistry(file)
}

func validateBankDocument(doc any) error {
	if doc == nil {
		return invalidBank("keyword bank is empty", nil)
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(banksSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return invalidBank("keyword bank schema check failed", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return invalidBank("keyword bank does not match schema", nil).
		WithContext("violations", strings.Join(msgs, "; "))
}

func buildRegistry(file bankFile) (*Registry, error) {
	reg := &Registry{
		banks:     make([]*KeywordBank, 0, len(file.Industries)),
		index:     make(map[string]*KeywordBank, len(file.Industries)),
		adjacency: make(map[string][]term, len(file.Adjacency)),
	}

	for _, entry := range file.Industries {
		name := strings.ToLower(strings.TrimSpace(entry.Name))
		if name == Unknown {
			return nil, invalidBank(fmt.Sprintf("industry name %q is reserved", Unknown), nil)
		}
		if _, dup := reg.index[name]; dup {
			return nil, invalidBank(fmt.Sprintf("duplicate industry %q", name), nil)
		}
		entry.Name = name
		bank := newBank(entry)
		reg.banks = append(reg.banks, bank)
		reg.index[name] = bank
	}

	fallback := file.Fallback
	fallback.Name = Unknown
	fallback.HardSkills, fallback.SoftSkills, fallback.Extras, fallback.Cues = nil, nil, nil, nil
	if fallback.Label == "" {
		fallback.Label = "General"
	}
	reg.fallback = newBank(fallback)

	for key, related := range file.Adjacency {
		lowered := strings.ToLower(key)
		for _, r := range dedupe(related) {
			reg.adjacency[lowered] = append(reg.adjacency[lowered], newTerm(r))
		}
	}

	return reg, nil
}

func newBank(entry bankEntry) *KeywordBank {
	bank := &KeywordBank{
		Name:             entry.Name,
		Label:            entry.Label,
		RequiredSections: dedupe(entry.RequiredSections),
		HardSkills:       dedupe(entry.HardSkills),
		SoftSkills:       dedupe(entry.SoftSkills),
		Extras:           dedupe(entry.Extras),
		Cues:             dedupe(entry.Cues),
		Advice:           append([]string(nil), entry.Advice...),
	}

	all := make([]string, 0, len(bank.HardSkills)+len(bank.SoftSkills)+len(bank.Extras))
	all = append(all, bank.HardSkills...)
	all = append(all, bank.SoftSkills...)
	all = append(all, bank.Extras...)
	for _, t := range dedupe(all) {
		bank.terms = append(bank.terms, newTerm(t))
	}

	for _, s := range bank.RequiredSections {
		bank.sections = append(bank.sections, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(s)+`\b`))
	}
	for _, c := range bank.Cues {
		bank.cues = append(bank.cues, wholeWord(strings.ToLower(c)))
	}
	return bank
}

// Lookup returns the bank for industry, or the fallback bank when it is not registered.
func (r *Registry) Lookup(industry string) *KeywordBank {
	if bank, ok := r.index[strings.ToLower(strings.TrimSpace(industry))]; ok {
		return bank
	}
	return r.fallback
}

// Has reports whether industry is a registered key.
func (r *Registry) Has(industry string) bool {
	_, ok := r.index[strings.ToLower(strings.TrimSpace(industry))]
	return ok
}

// Industries returns registered industry keys in declaration order.
func (r *Registry) Industries() []string {
	names := make([]string, len(r.banks))
	for i, b := range r.banks {
		names[i] = b.Name
	}
	return names
}

// Banks returns registered banks in declaration order.
func (r *Registry) Banks() []*KeywordBank {
	return append([]*KeywordBank(nil), r.banks...)
}

// Fallback returns the bank used for unknown industries.
func (r *Registry) Fallback() *KeywordBank {
	return r.fallback
}

func (r *Registry) related(found string) []term {
	return r.adjacency[strings.ToLower(found)]
}

// wholeWord compiles a matcher for phrase that refuses to match inside a longer word.
func wholeWord(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^a-z0-9])` + regexp.QuoteMeta(phrase) + `(?:[^a-z0-9]|$)`)
}

// dedupe drops blanks and case-insensitive repeats, keeping first occurrences.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func invalidBank(message string, cause error) *errors.AppError {
	return errors.NewConfigError(errors.ErrCodeInvalidKeywordBank, message, cause)
}
