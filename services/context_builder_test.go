package services

import (
	"fmt"
	"strings"
	"testing"

	"rag-chatbot-platform/internal/ai"
	"rag-chatbot-platform/models"
)

func TestBuildPromptFallbackMarker(t *testing.T) {
	messages := BuildPrompt(nil, nil, "what is this?", 20)

	found := false
	for _, m := range messages {
		if strings.Contains(m.Content, NoContextMarker) {
			found = true
		}
		if m.Role == ai.RoleSystem && strings.Contains(m.Content, "Document context") && strings.TrimSpace(m.Content) == "Document context:" {
			t.Fatalf("context field must never be empty")
		}
	}
	if !found {
		t.Fatalf("empty search results must produce the fallback marker")
	}
}

func TestBuildPromptJoinsChunks(t *testing.T) {
	messages := BuildPrompt([]string{"chunk one", "chunk two"}, nil, "q", 20)

	var contextMsg string
	for _, m := range messages {
		if strings.Contains(m.Content, "chunk one") {
			contextMsg = m.Content
		}
	}
	if contextMsg == "" {
		t.Fatalf("document context missing from prompt")
	}
	if !strings.Contains(contextMsg, "chunk one\n\nchunk two") {
		t.Fatalf("chunks must be joined with blank lines, got %q", contextMsg)
	}
}

func TestBuildPromptOrdering(t *testing.T) {
	history := []models.ConversationTurn{
		{Message: "first question", Response: "first answer"},
	}
	messages := BuildPrompt([]string{"ctx"}, history, "new question", 20)

	last := messages[len(messages)-1]
	if last.Role != ai.RoleUser || last.Content != "new question" {
		t.Fatalf("live query must be the final message, got %+v", last)
	}

	// system blocks, then history wrapped in markers, then the query
	var sequence []string
	for _, m := range messages {
		switch {
		case strings.Contains(m.Content, historyStartMarker):
			sequence = append(sequence, "start")
		case strings.Contains(m.Content, historyEndMarker):
			sequence = append(sequence, "end")
		case m.Content == "first question":
			sequence = append(sequence, "hist-user")
		case m.Content == "first answer":
			sequence = append(sequence, "hist-assistant")
		}
	}
	want := []string{"start", "hist-user", "hist-assistant", "end"}
	if len(sequence) != len(want) {
		t.Fatalf("unexpected history layout: %v", sequence)
	}
	for i := range want {
		if sequence[i] != want[i] {
			t.Fatalf("history layout out of order: %v", sequence)
		}
	}
}

func TestBuildPromptHistoryRoles(t *testing.T) {
	history := []models.ConversationTurn{
		{Message: "u1", Response: "a1"},
		{Message: "u2", Response: "a2"},
	}
	messages := BuildPrompt(nil, history, "q", 20)

	for _, m := range messages {
		switch m.Content {
		case "u1", "u2":
			if m.Role != ai.RoleUser {
				t.Fatalf("history question has role %q", m.Role)
			}
		case "a1", "a2":
			if m.Role != ai.RoleAssistant {
				t.Fatalf("history answer has role %q", m.Role)
			}
		}
	}
}

func TestBuildPromptTruncatesHistory(t *testing.T) {
	var history []models.ConversationTurn
	for i := 0; i < 30; i++ {
		history = append(history, models.ConversationTurn{
			Message:  fmt.Sprintf("question %d", i),
			Response: fmt.Sprintf("answer %d", i),
		})
	}
	messages := BuildPrompt(nil, history, "q", 20)

	kept := 0
	for _, m := range messages {
		if strings.HasPrefix(m.Content, "question ") {
			kept++
		}
	}
	if kept != 20 {
		t.Fatalf("expected 20 history turns kept, got %d", kept)
	}

	// The oldest 10 are dropped; the most recent 20 survive in order.
	for _, m := range messages {
		if m.Content == "question 9" {
			t.Fatalf("truncation must drop the oldest turns")
		}
	}
	foundNewest := false
	for _, m := range messages {
		if m.Content == "question 29" {
			foundNewest = true
		}
	}
	if !foundNewest {
		t.Fatalf("most recent turn missing after truncation")
	}
}

func TestBuildPromptNoHistoryNoMarkers(t *testing.T) {
	messages := BuildPrompt([]string{"ctx"}, nil, "q", 20)
	for _, m := range messages {
		if strings.Contains(m.Content, historyStartMarker) || strings.Contains(m.Content, historyEndMarker) {
			t.Fatalf("history markers must be absent without history")
		}
	}
}
