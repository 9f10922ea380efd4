package patterns

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed data/templates.yaml
var defaultCorpusYAML []byte

var corpusSchemaLoader = gojsonschema.NewStringLoader(corpusSchemaJSON)

// DefaultCorpusYAML returns the built-in template corpus source.
func DefaultCorpusYAML() []byte {
	out := make([]byte, len(defaultCorpusYAML))
	copy(out, defaultCorpusYAML)
	return out
}

// ReferenceClause is approved wording for one clause type.
type ReferenceClause struct {
	ID    string `yaml:"id" json:"id"`
	Type  string `yaml:"type" json:"type"`
	Title string `yaml:"title" json:"title"`
	Text  string `yaml:"text" json:"text"`
}

// TemplateDocument is an approved example document.
type TemplateDocument struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Text  string `yaml:"text" json:"text"`
}

// Words returns the word count of the template text.
func (t TemplateDocument) Words() int {
	return len(strings.Fields(t.Text))
}

// Corpus is the set of approved template text used for similarity checks.
type Corpus struct {
	Version   string             `yaml:"version" json:"version"`
	Clauses   []ReferenceClause  `yaml:"clauses" json:"clauses"`
	Documents []TemplateDocument `yaml:"documents" json:"documents"`
}

// DefaultCorpus parses the built-in corpus.
func DefaultCorpus() (*Corpus, error) {
	return ParseCorpus(defaultCorpusYAML)
}

// ParseCorpus decodes and validates a template corpus.
func ParseCorpus(data []byte) (*Corpus, error) {
	if err := validateSchema(corpusSchemaLoader, data); err != nil {
		return nil, err
	}
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", risk.ErrPatternLibrary, err)
	}
	ids := map[string]bool{}
	for _, cl := range c.Clauses {
		if ids[cl.ID] {
			return nil, fmt.Errorf("%w: duplicate template id %q", risk.ErrPatternLibrary, cl.ID)
		}
		ids[cl.ID] = true
	}
	for _, d := range c.Documents {
		if ids[d.ID] {
			return nil, fmt.Errorf("%w: duplicate template id %q", risk.ErrPatternLibrary, d.ID)
		}
		ids[d.ID] = true
	}
	return &c, nil
}

// ClausesFor returns the reference clauses of one type.
func (c *Corpus) ClausesFor(clauseType string) []ReferenceClause {
	var out []ReferenceClause
	for _, cl := range c.Clauses {
		if cl.Type == clauseType {
			out = append(out, cl)
		}
	}
	return out
}
