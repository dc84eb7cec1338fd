package services

import (
	"strings"
	"testing"
)

var testMarkers = []string{"capítulo", "capitulo", "chapter", "sección", "section", "parte"}

func TestSectionerSplitsOnHeadings(t *testing.T) {
	s := NewSectioner(testMarkers)
	text := "Chapter 1: Introduction\nThis is the intro body.\n\nChapter 2: Methods\nThis is the methods body.\n"

	sections := s.Split(text)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Title != "Chapter 1: Introduction" {
		t.Fatalf("unexpected first title: %q", sections[0].Title)
	}
	if !strings.Contains(sections[0].Body, "intro body") {
		t.Fatalf("first body missing content: %q", sections[0].Body)
	}
	if sections[1].Title != "Chapter 2: Methods" {
		t.Fatalf("unexpected second title: %q", sections[1].Title)
	}
}

func TestSectionerCaseInsensitive(t *testing.T) {
	s := NewSectioner(testMarkers)
	sections := s.Split("CHAPTER ONE\nbody a\nchapter two\nbody b\n")
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
}

func TestSectionerSpanishMarkers(t *testing.T) {
	s := NewSectioner(testMarkers)
	sections := s.Split("Capítulo 1\ncontenido uno\nCapitulo 2\ncontenido dos\n")
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Title != "Capítulo 1" {
		t.Fatalf("unexpected title: %q", sections[0].Title)
	}
}

func TestSectionerLeadingTextBecomesUntitledSection(t *testing.T) {
	s := NewSectioner(testMarkers)
	sections := s.Split("Preface text before any heading.\nChapter 1\nbody\n")
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Title != "" {
		t.Fatalf("expected untitled leading section, got title %q", sections[0].Title)
	}
	if !strings.Contains(sections[0].Body, "Preface") {
		t.Fatalf("leading section missing content")
	}
}

func TestSectionerNoHeadings(t *testing.T) {
	s := NewSectioner(testMarkers)
	sections := s.Split("just plain text\nwith no headings at all\n")
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Title != "" {
		t.Fatalf("expected no title, got %q", sections[0].Title)
	}
}

func TestSectionerMarkerMustStartLine(t *testing.T) {
	s := NewSectioner(testMarkers)
	sections := s.Split("see the next chapter for details\nChapter 1\nbody\n")
	if len(sections) != 2 {
		t.Fatalf("mid-line marker must not split; expected 2 sections, got %d", len(sections))
	}
}

func TestSectionerWordBoundary(t *testing.T) {
	s := NewSectioner(testMarkers)
	// "chapters" must not match the "chapter" marker.
	sections := s.Split("chapters are discussed below\nmore text\n")
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
}
