// Package patterns holds the rule data every analyzer reads: required
// sections, clause detectors, weakness indicators and semantic risk rules,
// plus the corpus of approved template text.
//
// Libraries are loaded from YAML, validated against a JSON schema and have
// every regular expression compiled up front. A loaded Library is never
// modified.
package patterns

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed data/patterns.yaml
var defaultLibraryYAML []byte

var librarySchemaLoader = gojsonschema.NewStringLoader(librarySchemaJSON)

// DefaultLibraryYAML returns the built-in library source.
func DefaultLibraryYAML() []byte {
	out := make([]byte, len(defaultLibraryYAML))
	copy(out, defaultLibraryYAML)
	return out
}

// Matcher is a compiled set of alternative patterns.
type Matcher []*regexp.Regexp

// MatchString reports whether any pattern matches.
func (m Matcher) MatchString(s string) bool {
	for _, re := range m {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// FindIndex returns the location of the earliest match of any pattern.
func (m Matcher) FindIndex(s string) []int {
	var best []int
	for _, re := range m {
		loc := re.FindStringIndex(s)
		if loc != nil && (best == nil || loc[0] < best[0]) {
			best = loc
		}
	}
	return best
}

// FindAll returns the match locations of every pattern, at most n per pattern.
func (m Matcher) FindAll(s string, n int) [][]int {
	var out [][]int
	for _, re := range m {
		out = append(out, re.FindAllStringIndex(s, n)...)
	}
	return out
}

// Count returns the total number of matches across all patterns.
func (m Matcher) Count(s string) int {
	n := 0
	for _, re := range m {
		n += len(re.FindAllStringIndex(s, -1))
	}
	return n
}

// SectionRule describes a document section. Required sections contribute
// Weight to structural completeness; optional ones may carry a Bonus.
type SectionRule struct {
	Name         string   `yaml:"name" json:"name"`
	Title        string   `yaml:"title" json:"title"`
	Required     bool     `yaml:"required" json:"required"`
	Critical     bool     `yaml:"critical" json:"critical"`
	Weight       float64  `yaml:"weight" json:"weight"`
	Bonus        float64  `yaml:"bonus" json:"bonus"`
	MinWords     int      `yaml:"min_words" json:"min_words"`
	OptimalWords int      `yaml:"optimal_words" json:"optimal_words"`
	Patterns     []string `yaml:"patterns" json:"patterns"`

	matcher Matcher
}

func (r SectionRule) Matcher() Matcher { return r.matcher }

// ClauseRule detects one legal clause type.
type ClauseRule struct {
	Type       string   `yaml:"type" json:"type"`
	Title      string   `yaml:"title" json:"title"`
	Importance float64  `yaml:"importance" json:"importance"`
	Patterns   []string `yaml:"patterns" json:"patterns"`

	matcher Matcher
}

func (r ClauseRule) Matcher() Matcher { return r.matcher }

// WeaknessRule scores the quality of one content area.
type WeaknessRule struct {
	Category string     `yaml:"category" json:"category"`
	Title    string     `yaml:"title" json:"title"`
	Weight   float64    `yaml:"weight" json:"weight"`
	Theme    risk.Theme `yaml:"theme" json:"theme"`
	Presence []string   `yaml:"presence" json:"presence"`
	Weak     []string   `yaml:"weak" json:"weak"`
	Negative []string   `yaml:"negative" json:"negative"`
	Strong   []string   `yaml:"strong" json:"strong"`

	presence, weak, negative, strong Matcher
}

func (r WeaknessRule) PresenceMatcher() Matcher { return r.presence }
func (r WeaknessRule) WeakMatcher() Matcher     { return r.weak }
func (r WeaknessRule) NegativeMatcher() Matcher { return r.negative }
func (r WeaknessRule) StrongMatcher() Matcher   { return r.strong }

// IndicatorCount is the number of weak and negative patterns, the
// denominator of the weakness score.
func (r WeaknessRule) IndicatorCount() int {
	return len(r.Weak) + len(r.Negative)
}

// SemanticRule detects one semantic risk type through context-window patterns.
type SemanticRule struct {
	Type       string        `yaml:"type" json:"type"`
	Title      string        `yaml:"title" json:"title"`
	Importance float64       `yaml:"importance" json:"importance"`
	Severity   risk.Severity `yaml:"severity" json:"severity"`
	Theme      risk.Theme    `yaml:"theme" json:"theme"`
	Patterns   []string      `yaml:"patterns" json:"patterns"`

	matcher Matcher
}

func (r SemanticRule) Matcher() Matcher { return r.matcher }

// Library is a versioned, validated set of rules.
type Library struct {
	Version    string         `yaml:"version" json:"version"`
	Sections   []SectionRule  `yaml:"sections" json:"sections"`
	Clauses    []ClauseRule   `yaml:"clauses" json:"clauses"`
	Weaknesses []WeaknessRule `yaml:"weaknesses" json:"weaknesses"`
	Semantic   []SemanticRule `yaml:"semantic" json:"semantic"`
}

// DefaultLibrary parses the built-in library.
func DefaultLibrary() (*Library, error) {
	return ParseLibrary(defaultLibraryYAML)
}

// ParseLibrary decodes, validates and compiles a library. Any malformed
// rule fails the whole load with an error wrapping risk.ErrPatternLibrary.
func ParseLibrary(data []byte) (*Library, error) {
	if err := validateSchema(librarySchemaLoader, data); err != nil {
		return nil, err
	}
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("%w: %v", risk.ErrPatternLibrary, err)
	}
	if err := lib.compile(); err != nil {
		return nil, err
	}
	return &lib, nil
}

func (l *Library) compile() error {
	seen := map[string]bool{}
	unique := func(kind, name string) error {
		key := kind + "/" + name
		if seen[key] {
			return fmt.Errorf("%w: duplicate %s %q", risk.ErrPatternLibrary, kind, name)
		}
		seen[key] = true
		return nil
	}

	var err error
	for i := range l.Sections {
		r := &l.Sections[i]
		if err := unique("section", r.Name); err != nil {
			return err
		}
		if r.Required && r.Weight <= 0 {
			return fmt.Errorf("%w: required section %q needs a positive weight", risk.ErrPatternLibrary, r.Name)
		}
		if r.matcher, err = compileAll("section "+r.Name, r.Patterns); err != nil {
			return err
		}
	}
	for i := range l.Clauses {
		r := &l.Clauses[i]
		if err := unique("clause", r.Type); err != nil {
			return err
		}
		if r.matcher, err = compileAll("clause "+r.Type, r.Patterns); err != nil {
			return err
		}
	}
	for i := range l.Weaknesses {
		r := &l.Weaknesses[i]
		if err := unique("weakness", r.Category); err != nil {
			return err
		}
		if r.IndicatorCount() == 0 {
			return fmt.Errorf("%w: weakness %q has no weak or negative indicators", risk.ErrPatternLibrary, r.Category)
		}
		name := "weakness " + r.Category
		if r.presence, err = compileAll(name, r.Presence); err != nil {
			return err
		}
		if r.weak, err = compileAll(name, r.Weak); err != nil {
			return err
		}
		if r.negative, err = compileAll(name, r.Negative); err != nil {
			return err
		}
		if r.strong, err = compileAll(name, r.Strong); err != nil {
			return err
		}
	}
	for i := range l.Semantic {
		r := &l.Semantic[i]
		if err := unique("semantic", r.Type); err != nil {
			return err
		}
		if r.matcher, err = compileAll("semantic "+r.Type, r.Patterns); err != nil {
			return err
		}
	}
	return nil
}

func compileAll(owner string, patterns []string) (Matcher, error) {
	m := make(Matcher, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", risk.ErrPatternLibrary, owner, err)
		}
		m = append(m, re)
	}
	return m, nil
}

func validateSchema(schema gojsonschema.JSONLoader, data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", risk.ErrPatternLibrary, err)
	}
	if doc == nil {
		return fmt.Errorf("%w: empty document", risk.ErrPatternLibrary)
	}
	result, err := gojsonschema.Validate(schema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", risk.ErrPatternLibrary, err)
	}
	if !result.Valid() {
		var issues []string
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return fmt.Errorf("%w: %s", risk.ErrPatternLibrary, strings.Join(issues, "; "))
	}
	return nil
}

// Section returns the rule with the given name.
func (l *Library) Section(name string) (SectionRule, bool) {
	for _, r := range l.Sections {
		if r.Name == name {
			return r, true
		}
	}
	return SectionRule{}, false
}

// RequiredSections returns the required section rules in library order.
func (l *Library) RequiredSections() []SectionRule {
	var out []SectionRule
	for _, r := range l.Sections {
		if r.Required {
			out = append(out, r)
		}
	}
	return out
}

// Clause returns the rule for the given clause type.
func (l *Library) Clause(clauseType string) (ClauseRule, bool) {
	for _, r := range l.Clauses {
		if r.Type == clauseType {
			return r, true
		}
	}
	return ClauseRule{}, false
}

// Stats summarises the library for display.
type Stats struct {
	Version    string `json:"version"`
	Sections   int    `json:"sections"`
	Required   int    `json:"required_sections"`
	Clauses    int    `json:"clauses"`
	Weaknesses int    `json:"weaknesses"`
	Semantic   int    `json:"semantic"`
	Patterns   int    `json:"patterns"`
}

func (l *Library) Stats() Stats {
	s := Stats{
		Version:    l.Version,
		Sections:   len(l.Sections),
		Clauses:    len(l.Clauses),
		Weaknesses: len(l.Weaknesses),
		Semantic:   len(l.Semantic),
	}
	for _, r := range l.Sections {
		if r.Required {
			s.Required++
		}
		s.Patterns += len(r.Patterns)
	}
	for _, r := range l.Clauses {
		s.Patterns += len(r.Patterns)
	}
	for _, r := range l.Weaknesses {
		s.Patterns += len(r.Presence) + len(r.Weak) + len(r.Negative) + len(r.Strong)
	}
	for _, r := range l.Semantic {
		s.Patterns += len(r.Patterns)
	}
	return s
}
