package ai

import (
	"context"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"rag-chatbot-platform/internal/config"
)

// GoogleGateway uses the Google Generative AI SDK for embeddings and chat
// completions.
type GoogleGateway struct {
	client         *genai.Client
	embeddingModel string
	chatModel      string
}

func NewGoogleGateway(cfg *config.Config) (*GoogleGateway, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GoogleGateway{
		client:         client,
		embeddingModel: cfg.GoogleEmbeddingModel,
		chatModel:      cfg.GoogleChatModel,
	}, nil
}

func (g *GoogleGateway) Embed(ctx context.Context, text string) ([]float32, error) {
	model := g.client.EmbeddingModel(g.embeddingModel)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Embedding.Values, nil
}

// Complete maps the ordered message list onto the genai chat shape: system
// messages become the system instruction, prior user/assistant messages
// become chat history, and the final user message is sent as the prompt.
func (g *GoogleGateway) Complete(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("empty prompt")
	}

	model := g.client.GenerativeModel(g.chatModel)
	model.SetTemperature(float32(temperature))
	model.SetMaxOutputTokens(int32(maxTokens))

	var systemParts []string
	var history []*genai.Content
	var prompt string

	last := len(messages) - 1
	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			systemParts = append(systemParts, msg.Content)
		case RoleAssistant:
			history = append(history, &genai.Content{
				Parts: []genai.Part{genai.Text(msg.Content)},
				Role:  "model",
			})
		default:
			if i == last {
				prompt = msg.Content
				continue
			}
			history = append(history, &genai.Content{
				Parts: []genai.Part{genai.Text(msg.Content)},
				Role:  "user",
			})
		}
	}

	if len(systemParts) > 0 {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(strings.Join(systemParts, "\n\n"))},
		}
	}

	chat := model.StartChat()
	chat.History = history

	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no completion returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text in completion")
	}
	return sb.String(), nil
}

func (g *GoogleGateway) Close() error {
	return g.client.Close()
}
