package document

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxHeadingWords is the longest line still treated as a heading.
const maxHeadingWords = 8

// Section is a heading and the body that follows it up to the next heading.
// Text before the first heading forms a section with an empty Title.
type Section struct {
	Title string
	Start int
	End   int
	Body  string
	Words int
}

var minorWords = map[string]bool{
	"a": true, "an": true, "and": true, "&": true, "for": true, "in": true,
	"of": true, "on": true, "or": true, "the": true, "to": true, "with": true,
}

func splitSections(text string) []Section {
	var (
		sections []Section
		cur      *Section
		pos      int
	)
	closeCur := func(end int) {
		if cur == nil {
			return
		}
		body := cur.bodyStart()
		cur.End = end
		cur.Body = strings.TrimSpace(text[body:end])
		cur.Words = len(strings.Fields(cur.Body))
		if cur.Title != "" || cur.Body != "" {
			sections = append(sections, *cur)
		}
		cur = nil
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		if title, ok := headingTitle(line); ok {
			closeCur(pos)
			cur = &Section{Title: title, Start: pos, End: pos + len(line)}
		} else if cur == nil && strings.TrimSpace(line) != "" {
			cur = &Section{Start: pos}
		}
		pos += len(line)
	}
	closeCur(len(text))
	return sections
}

// bodyStart skips the heading line.
func (s *Section) bodyStart() int {
	if s.Title == "" {
		return s.Start
	}
	return s.End
}

// IsHeading reports whether a single line looks like a section heading.
func IsHeading(line string) bool {
	_, ok := headingTitle(line)
	return ok
}

func headingTitle(line string) (string, bool) {
	s := strings.TrimSpace(line)
	if s == "" {
		return "", false
	}
	if strings.HasPrefix(s, "#") {
		t := strings.TrimSpace(strings.TrimLeft(s, "#"))
		return t, t != ""
	}
	numbered := false
	if t, ok := stripNumbering(s); ok {
		s = t
		numbered = true
	}
	words := strings.Fields(s)
	if len(words) == 0 || len(words) > maxHeadingWords {
		return "", false
	}
	if strings.HasSuffix(s, ":") {
		s = strings.TrimSpace(strings.TrimSuffix(s, ":"))
		words = strings.Fields(s)
		if len(words) == 0 {
			return "", false
		}
	} else if !numbered && strings.ContainsAny(s[len(s)-1:], ".,;!?") {
		return "", false
	}
	for i, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if unicode.IsUpper(r) || unicode.IsDigit(r) {
			continue
		}
		if i > 0 && minorWords[strings.ToLower(w)] {
			continue
		}
		return "", false
	}
	return s, true
}

// stripNumbering removes a leading outline number such as "1.", "2.3" or "4)".
func stripNumbering(s string) (string, bool) {
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	if i == 0 {
		return s, false
	}
	if i < len(s) && s[i] == ')' {
		i++
	}
	if i >= len(s) || (s[i] != ' ' && s[i] != '\t') {
		return s, false
	}
	return strings.TrimSpace(s[i:]), true
}
