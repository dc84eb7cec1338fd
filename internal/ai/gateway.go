package ai

import (
	"context"
	"fmt"

	"rag-chatbot-platform/internal/config"
)

// Message roles used in assembled prompts.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged block of an assembled prompt. The ordered
// message list is the contract between the context assembler and the
// generation provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Embedder produces a fixed-length vector for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a completion for an ordered list of role-tagged
// messages.
type Generator interface {
	Complete(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error)
}

// Gateway bundles the embedding and generation capabilities of one
// provider. Callers must not retry failed calls; a failure is final for
// that attempt.
type Gateway interface {
	Embedder
	Generator
}

// NewGateway builds the configured provider and wraps it with the circuit
// breaker and client-side rate limiter.
func NewGateway(cfg *config.Config) (Gateway, error) {
	var inner Gateway
	var err error

	switch cfg.AIProvider {
	case "openai":
		inner, err = NewOpenAIGateway(cfg)
	case "google":
		inner, err = NewGoogleGateway(cfg)
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.AIProvider)
	}
	if err != nil {
		return nil, err
	}

	return newResilientGateway(cfg.AIProvider, inner), nil
}
