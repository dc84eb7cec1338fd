package services

import (
	"context"
	"time"

	"github.com/pgvector/pgvector-go"

	"rag-chatbot-platform/internal/ai"
	"rag-chatbot-platform/internal/logger"
	"rag-chatbot-platform/models"
)

// ApologyResponse is returned verbatim when the language model fails. A
// query always produces some text, never a silent empty reply.
const ApologyResponse = "Sorry, I was unable to generate a response right now. Please try again in a moment."

// ChunkSearcher is the similarity-search surface the RAG service reads.
type ChunkSearcher interface {
	SearchChunks(ctx context.Context, embedding pgvector.Vector, k int) ([]models.Chunk, error)
}

// ConversationStore is the history surface the RAG service reads and writes.
type ConversationStore interface {
	AppendTurn(ctx context.Context, userID int64, message, response string) error
	HistorySince(ctx context.Context, userID int64, since time.Time) ([]models.ConversationTurn, error)
	Summary(ctx context.Context, userID int64, window time.Duration) (*models.ConversationSummary, error)
}

// RAGService answers queries by combining similarity search over stored
// chunks with the user's recent conversation history.
type RAGService struct {
	gateway         ai.Gateway
	docs            ChunkSearcher
	convs           ConversationStore
	topK            int
	maxHistoryTurns int
	maxTokens       int
	temperature     float64
	historyWindow   time.Duration
	now             func() time.Time
}

func NewRAGService(gateway ai.Gateway, docs ChunkSearcher, convs ConversationStore, topK, maxHistoryTurns, maxTokens int, temperature float64, historyWindow time.Duration) *RAGService {
	return &RAGService{
		gateway:         gateway,
		docs:            docs,
		convs:           convs,
		topK:            topK,
		maxHistoryTurns: maxHistoryTurns,
		maxTokens:       maxTokens,
		temperature:     temperature,
		historyWindow:   historyWindow,
		now:             time.Now,
	}
}

// Search embeds the query and returns the contents of the k nearest chunks.
// An embedding failure degrades to an empty result rather than an error; the
// caller falls back to answering without document context.
func (r *RAGService) Search(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		k = r.topK
	}

	embedding, err := r.gateway.Embed(ctx, query)
	if err != nil {
		logger.Warn("query embedding failed, degrading to empty context", "error", err)
		return nil, nil
	}

	chunks, err := r.docs.SearchChunks(ctx, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, &StorageError{Op: "search", Err: err}
	}

	contents := make([]string, 0, len(chunks))
	for _, c := range chunks {
		contents = append(contents, c.Content)
	}
	return contents, nil
}

// History returns the user's turns inside the trailing window, oldest first.
func (r *RAGService) History(ctx context.Context, userID int64) ([]models.ConversationTurn, error) {
	since := r.now().UTC().Add(-r.historyWindow)
	turns, err := r.convs.HistorySince(ctx, userID, since)
	if err != nil {
		return nil, &StorageError{Op: "history", Err: err}
	}
	return turns, nil
}

// HistorySummary reports turn counts for a user.
func (r *RAGService) HistorySummary(ctx context.Context, userID int64) (*models.ConversationSummary, error) {
	summary, err := r.convs.Summary(ctx, userID, r.historyWindow)
	if err != nil {
		return nil, &StorageError{Op: "summary", Err: err}
	}
	return summary, nil
}

// Answer runs the full search, history, assemble, generate pipeline. When
// userID is nil the history store is never touched and the prompt carries no
// history block. A generation failure yields the apology text rather than an
// error. A failure recording the turn is logged and the answer still
// returned.
func (r *RAGService) Answer(ctx context.Context, query string, userID *int64) (*models.AnswerResult, error) {
	similar, err := r.Search(ctx, query, r.topK)
	if err != nil {
		return nil, err
	}

	var history []models.ConversationTurn
	if userID != nil {
		history, err = r.History(ctx, *userID)
		if err != nil {
			return nil, err
		}
	}

	messages := BuildPrompt(similar, history, query, r.maxHistoryTurns)

	response, err := r.gateway.Complete(ctx, messages, r.maxTokens, r.temperature)
	if err != nil {
		logger.Error("generation failed, returning apology", "error", err)
		response = ApologyResponse
	}

	if userID != nil {
		if err := r.convs.AppendTurn(ctx, *userID, query, response); err != nil {
			logger.Error("failed to record conversation turn", "user_id", *userID, "error", err)
		}
	}

	historyTurns := len(history)
	if r.maxHistoryTurns > 0 && historyTurns > r.maxHistoryTurns {
		historyTurns = r.maxHistoryTurns
	}

	return &models.AnswerResult{
		Response:     response,
		SourcesCount: len(similar),
		UsedHistory:  userID != nil && len(history) > 0,
		HistoryTurns: historyTurns,
	}, nil
}
