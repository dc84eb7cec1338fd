package store

import (
	"regexp"
	"strings"
	"testing"
)

// likeMatch interprets a LIKE pattern with '\' as the escape character, the
// way Postgres evaluates the DeleteDocument query.
func likeMatch(t *testing.T, pattern, candidate string) bool {
	t.Helper()
	var re strings.Builder
	re.WriteString("^")
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			re.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			re.WriteString(".*")
		case r == '_':
			re.WriteString(".")
		default:
			re.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	re.WriteString("$")
	return regexp.MustCompile(re.String()).MatchString(candidate)
}

func TestSectionSourcePatternMatchesOnlyDerivedSections(t *testing.T) {
	pattern := sectionSourcePattern("book")

	for _, candidate := range []string{"book_section_1", "book_section_12"} {
		if !likeMatch(t, pattern, candidate) {
			t.Fatalf("pattern must match derived section %q", candidate)
		}
	}

	// '_' must be literal: a single-character wildcard would match these.
	for _, candidate := range []string{"bookXsectionY1", "book-section-1", "booksection_1", "book", "notebook_section_1"} {
		if likeMatch(t, pattern, candidate) {
			t.Fatalf("pattern must not match unrelated source %q", candidate)
		}
	}
}

func TestSectionSourcePatternEscapesSourceName(t *testing.T) {
	pattern := sectionSourcePattern("my_notes")

	if !likeMatch(t, pattern, "my_notes_section_3") {
		t.Fatalf("pattern must match sections of a source containing underscores")
	}
	if likeMatch(t, pattern, "myXnotes_section_3") {
		t.Fatalf("underscore in the source name must match literally")
	}

	pattern = sectionSourcePattern("100%")
	if !likeMatch(t, pattern, "100%_section_1") {
		t.Fatalf("pattern must match sections of a source containing percent")
	}
	if likeMatch(t, pattern, "100x_section_1") {
		t.Fatalf("percent in the source name must match literally")
	}
}
