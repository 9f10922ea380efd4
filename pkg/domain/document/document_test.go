package document

import (
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/riskgate/pkg/domain/risk"
)

const sample = `Acme Proposal

# Executive Summary
We propose a phased delivery.

## Scope of Work
Design, build and deploy the portal.
Includes data migration.

3. Budget:
Total cost is $50,000.
`

func TestDocument_Counts(t *testing.T) {
	d := New(sample)
	if d.WordCount() != 29 {
		t.Errorf("expected 29 words, got %d", d.WordCount())
	}
	if d.LineCount() != 12 {
		t.Errorf("expected 12 lines, got %d", d.LineCount())
	}
	if New("").LineCount() != 0 {
		t.Error("expected empty document to have 0 lines")
	}
}

func TestDocument_HashIsStable(t *testing.T) {
	a := New(sample).Hash()
	b := New(sample).Hash()
	if a != b || len(a) != 64 {
		t.Errorf("expected stable 64-char hash, got %q and %q", a, b)
	}
	if New(sample+" ").Hash() == a {
		t.Error("expected different text to hash differently")
	}
}

func TestDocument_Sections(t *testing.T) {
	secs := New(sample).Sections()
	var titles []string
	for _, s := range secs {
		titles = append(titles, s.Title)
	}
	want := []string{"Acme Proposal", "Executive Summary", "Scope of Work", "Budget"}
	if strings.Join(titles, "|") != strings.Join(want, "|") {
		t.Fatalf("expected sections %v, got %v", want, titles)
	}
	if secs[2].Words != 9 {
		t.Errorf("expected scope body of 9 words, got %d (%q)", secs[2].Words, secs[2].Body)
	}
	if secs[3].Body != "Total cost is $50,000." {
		t.Errorf("unexpected budget body %q", secs[3].Body)
	}
}

func TestDocument_SectionAt(t *testing.T) {
	d := New(sample)
	idx := strings.Index(sample, "data migration")
	s, ok := d.SectionAt(idx)
	if !ok || s.Title != "Scope of Work" {
		t.Errorf("expected Scope of Work, got %q (ok=%v)", s.Title, ok)
	}
	if _, ok := d.SectionAt(len(sample) + 10); ok {
		t.Error("expected no section past the end")
	}
}

func TestDocument_PreambleSection(t *testing.T) {
	d := New("some text without headings at all\nand a second line")
	secs := d.Sections()
	if len(secs) != 1 || secs[0].Title != "" {
		t.Fatalf("expected a single untitled section, got %+v", secs)
	}
	if secs[0].Words != 10 {
		t.Errorf("expected 10 words, got %d", secs[0].Words)
	}
}

func TestIsHeading(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"# Timeline", true},
		{"Payment Terms", true},
		{"2.1 Team and Experience", true},
		{"Deliverables:", true},
		{"Terms of Service", true},
		{"we can do the project", false},
		{"Budget is reasonable.", false},
		{"Budget: $50,000 for development", false},
		{"Payment Terms. Client shall pay all invoices within thirty days.", false},
		{"", false},
		{"#", false},
	}
	for _, tt := range tests {
		if got := IsHeading(tt.line); got != tt.want {
			t.Errorf("IsHeading(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestDocument_Paragraphs(t *testing.T) {
	text := "First para\nstill first.\n\n\nSecond para.\n"
	ps := New(text).Paragraphs()
	if len(ps) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(ps))
	}
	if ps[0].Text != "First para\nstill first." {
		t.Errorf("unexpected first paragraph %q", ps[0].Text)
	}
	if text[ps[1].Start:ps[1].End] != "Second para.\n" {
		t.Errorf("unexpected span %q", text[ps[1].Start:ps[1].End])
	}
}

func TestTokenize(t *testing.T) {
	got := strings.Join(Tokenize("Hello, World! (30) days -- ok."), " ")
	if got != "hello world 30 days ok" {
		t.Errorf("unexpected tokens %q", got)
	}
}

func TestLimits_Validate(t *testing.T) {
	l := DefaultLimits()
	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "   \n\t", risk.ErrEmptyDocument},
		{"short", "too short", risk.ErrDocumentTooShort},
		{"long", strings.Repeat("a", 500001), risk.ErrDocumentTooLong},
		{"ok", strings.Repeat("word ", 20), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.Validate(tt.text)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			var ve *risk.ValidationError
			if !errors.As(err, &ve) || ve.Field != "text" {
				t.Errorf("expected ValidationError on text, got %T", err)
			}
		})
	}
}
