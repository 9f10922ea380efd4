// Package document models the text under analysis.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

// Document is the immutable input of one analysis call.
type Document struct {
	text  string
	lower string
	words []string
	lines int

	sections []Section
}

// New builds a Document from raw text. It does not validate the text; use
// Limits.Validate for that.
func New(text string) *Document {
	d := &Document{
		text:  text,
		lower: strings.ToLower(text),
		words: strings.Fields(text),
	}
	if text != "" {
		d.lines = strings.Count(text, "\n") + 1
	}
	d.sections = splitSections(text)
	return d
}

// Text returns the raw text.
func (d *Document) Text() string { return d.text }

// Lower returns the lower-cased text.
func (d *Document) Lower() string { return d.lower }

// WordCount returns the number of whitespace separated words.
func (d *Document) WordCount() int { return len(d.words) }

// LineCount returns the number of lines.
func (d *Document) LineCount() int { return d.lines }

// Words returns the lower-cased word tokens with surrounding punctuation removed.
func (d *Document) Words() []string {
	return Tokenize(d.text)
}

// Hash returns the hex sha256 of the text.
func (d *Document) Hash() string {
	sum := sha256.Sum256([]byte(d.text))
	return hex.EncodeToString(sum[:])
}

// Sections returns the heading-delimited sections of the document in order.
func (d *Document) Sections() []Section {
	out := make([]Section, len(d.sections))
	copy(out, d.sections)
	return out
}

// SectionAt returns the section that contains the byte offset.
func (d *Document) SectionAt(offset int) (Section, bool) {
	for _, s := range d.sections {
		if offset >= s.Start && offset < s.End {
			return s, true
		}
	}
	return Section{}, false
}

// Paragraphs splits the text on blank lines. Offsets are byte offsets into
// the raw text.
func (d *Document) Paragraphs() []Span {
	var spans []Span
	start := -1
	pos := 0
	for _, line := range strings.SplitAfter(d.text, "\n") {
		blank := strings.TrimSpace(line) == ""
		switch {
		case !blank && start < 0:
			start = pos
		case blank && start >= 0:
			spans = append(spans, Span{Start: start, End: pos, Text: strings.TrimSpace(d.text[start:pos])})
			start = -1
		}
		pos += len(line)
	}
	if start >= 0 {
		spans = append(spans, Span{Start: start, End: len(d.text), Text: strings.TrimSpace(d.text[start:])})
	}
	return spans
}

// Span is a contiguous region of the document.
type Span struct {
	Start int
	End   int
	Text  string
}

// Tokenize lower-cases text and splits it into word tokens, dropping
// punctuation at both ends of every token.
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Limits bounds the text accepted for analysis.
type Limits struct {
	MinChars int `json:"min_chars" yaml:"min_chars"`
	MaxChars int `json:"max_chars" yaml:"max_chars"`
}

// DefaultLimits returns the default input limits.
func DefaultLimits() Limits {
	return Limits{MinChars: 40, MaxChars: 500000}
}

// Validate rejects text that cannot be analyzed. The returned error wraps one
// of risk.ErrEmptyDocument, risk.ErrDocumentTooShort or risk.ErrDocumentTooLong.
func (l Limits) Validate(text string) error {
	trimmed := strings.TrimSpace(text)
	n := len([]rune(trimmed))
	switch {
	case n == 0:
		return &risk.ValidationError{Field: "text", Reason: "document is empty", Err: risk.ErrEmptyDocument}
	case l.MinChars > 0 && n < l.MinChars:
		return &risk.ValidationError{
			Field:  "text",
			Reason: fmt.Sprintf("document has %d characters, minimum is %d", n, l.MinChars),
			Err:    risk.ErrDocumentTooShort,
		}
	case l.MaxChars > 0 && n > l.MaxChars:
		return &risk.ValidationError{
			Field:  "text",
			Reason: fmt.Sprintf("document has %d characters, maximum is %d", n, l.MaxChars),
			Err:    risk.ErrDocumentTooLong,
		}
	}
	return nil
}
