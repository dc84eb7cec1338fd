package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"rag-chatbot-platform/internal/config"
)

// OpenAIGateway talks to an OpenAI-compatible API (OpenAI, OpenRouter, etc.)
// for both embeddings and chat completions.
type OpenAIGateway struct {
	embedLLM *openai.LLM
	chatLLM  *openai.LLM
}

func NewOpenAIGateway(cfg *config.Config) (*OpenAIGateway, error) {
	token := strings.TrimPrefix(cfg.OpenAIAPIKey, "Bearer ")

	embedLLM, err := openai.New(
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithToken(token),
		openai.WithModel(cfg.OpenAIEmbeddingModel),
		openai.WithEmbeddingModel(cfg.OpenAIEmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding client: %w", err)
	}

	chatLLM, err := openai.New(
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithToken(token),
		openai.WithModel(cfg.OpenAIChatModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat client: %w", err)
	}

	return &OpenAIGateway{embedLLM: embedLLM, chatLLM: chatLLM}, nil
}

func (g *OpenAIGateway) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.embedLLM.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vectors[0], nil
}

func (g *OpenAIGateway) Complete(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.MessageContent{
			Role:  chatMessageType(msg.Role),
			Parts: []llms.ContentPart{llms.TextContent{Text: msg.Content}},
		})
	}

	resp, err := g.chatLLM.GenerateContent(ctx, content,
		llms.WithMaxTokens(maxTokens),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	return resp.Choices[0].Content, nil
}

func chatMessageType(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
