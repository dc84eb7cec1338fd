package services

import (
	"strings"

	"rag-chatbot-platform/internal/ai"
	"rag-chatbot-platform/models"
)

const (
	// NoContextMarker replaces the document context block when similarity
	// search returned nothing. The generation call never sees an empty
	// context field.
	NoContextMarker = "No relevant information was found in the knowledge base for this query."

	historyStartMarker = "=== Conversation history from the last 24 hours ==="
	historyEndMarker   = "=== End of history. Answer the new query below. ==="

	defaultSystemPrompt = "You are a helpful assistant that answers questions using the provided document context. " +
		"Base your answers on the context below. If the context does not contain the answer, say so honestly. " +
		"Use the conversation history, when present, only to resolve references in the new query."
)

// BuildPrompt assembles the ordered message payload for a generation call:
// system instructions, document context, an optionally marker-delimited
// history block, then the live query. History longer than maxHistoryTurns
// keeps only the most recent turns.
func BuildPrompt(similar []string, history []models.ConversationTurn, query string, maxHistoryTurns int) []ai.Message {
	contextBlock := NoContextMarker
	if len(similar) > 0 {
		contextBlock = strings.Join(similar, "\n\n")
	}

	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: defaultSystemPrompt},
		{Role: ai.RoleSystem, Content: "Document context:\n" + contextBlock},
	}

	if len(history) > 0 {
		if maxHistoryTurns > 0 && len(history) > maxHistoryTurns {
			history = history[len(history)-maxHistoryTurns:]
		}
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: historyStartMarker})
		for _, turn := range history {
			messages = append(messages,
				ai.Message{Role: ai.RoleUser, Content: turn.Message},
				ai.Message{Role: ai.RoleAssistant, Content: turn.Response},
			)
		}
		messages = append(messages, ai.Message{Role: ai.RoleSystem, Content: historyEndMarker})
	}

	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: query})
	return messages
}
