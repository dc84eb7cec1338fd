package services

import (
	"regexp"
	"strings"
)

// Sectioner splits extracted document text into titled sections by scanning
// for heading lines that start with a known section marker word.
type Sectioner struct {
	heading *regexp.Regexp
}

// NewSectioner builds a sectioner for the given marker words. Matching is
// case-insensitive and anchored at the start of a line.
func NewSectioner(markers []string) *Sectioner {
	escaped := make([]string, 0, len(markers))
	for _, m := range markers {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		escaped = append(escaped, regexp.QuoteMeta(m))
	}
	if len(escaped) == 0 {
		escaped = []string{"chapter"}
	}
	pattern := `(?i)^(` + strings.Join(escaped, "|") + `)\b`
	return &Sectioner{heading: regexp.MustCompile(pattern)}
}

// Section carries a heading title and the body text under it.
type Section struct {
	Title string
	Body  string
}

// Split partitions text into sections. Text before the first heading becomes
// an untitled leading section. Sections with empty bodies are kept only when
// they carry a title, so heading-only sections remain addressable.
func (s *Sectioner) Split(text string) []Section {
	var sections []Section
	var title string
	var body strings.Builder

	flush := func() {
		content := strings.TrimSpace(body.String())
		if content != "" || title != "" {
			sections = append(sections, Section{Title: title, Body: content})
		}
		body.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if s.heading.MatchString(trimmed) {
			flush()
			title = trimmed
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	flush()

	return sections
}
