package routes

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"rag-chatbot-platform/internal/store"
	"rag-chatbot-platform/models"
	"rag-chatbot-platform/services"
	"rag-chatbot-platform/utils"
)

// HandleQuery answers a user query with retrieved context and, when a user
// id is supplied, the user's recent history.
func HandleQuery(rag *services.RAGService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.QueryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Query is required", err.Error())
			return
		}

		result, err := rag.Answer(c.Request.Context(), req.Query, req.UserID)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to answer query", nil)
			return
		}

		c.JSON(http.StatusOK, models.QueryResponse{
			Response:            result.Response,
			SourcesCount:        result.SourcesCount,
			UsedHistory:         result.UsedHistory,
			HistoryMessageCount: result.HistoryTurns,
		})
	}
}

// HandleSearch runs similarity search only, without generation.
func HandleSearch(rag *services.RAGService) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			utils.RespondWithBadRequest(c, "Query parameter 'q' is required", nil)
			return
		}

		k := 0
		if raw := c.Query("k"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 || parsed > 50 {
				utils.RespondWithBadRequest(c, "Parameter 'k' must be an integer between 1 and 50", nil)
				return
			}
			k = parsed
		}

		results, err := rag.Search(c.Request.Context(), query, k)
		if err != nil {
			utils.RespondWithInternalError(c, "Search failed", nil)
			return
		}
		if results == nil {
			results = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
	}
}

// GetConversation returns a user's recent turns, newest first.
func GetConversation(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid user id", nil)
			return
		}

		hours := 24
		if raw := c.Query("hours"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				hours = parsed
			}
		}
		limit := 50
		if raw := c.Query("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
				limit = parsed
			}
		}

		since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
		turns, err := st.RecentTurns(c.Request.Context(), userID, since, limit)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to retrieve conversation", nil)
			return
		}
		if turns == nil {
			turns = []models.ConversationTurn{}
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "turns": turns, "count": len(turns)})
	}
}

// GetConversationSummary reports turn counts for a user.
func GetConversationSummary(rag *services.RAGService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
		if err != nil {
			utils.RespondWithBadRequest(c, "Invalid user id", nil)
			return
		}

		summary, err := rag.HistorySummary(c.Request.Context(), userID)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to build summary", nil)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// StatsStore is the aggregate surface the stats endpoint reads.
type StatsStore interface {
	CountChunks(ctx context.Context) (int64, error)
	CountSources(ctx context.Context) (int64, error)
	ConversationStats(ctx context.Context, window time.Duration) (*models.ConversationStats, error)
}

// GetStats reports knowledge-base and conversation counts.
func GetStats(st StatsStore, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		chunks, err := st.CountChunks(ctx)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to count chunks", nil)
			return
		}
		sources, err := st.CountSources(ctx)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to count sources", nil)
			return
		}
		conv, err := st.ConversationStats(ctx, window)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to count conversations", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"total_chunks":          chunks,
			"total_sources":         sources,
			"total_turns":           conv.TotalTurns,
			"turns_last_24h":        conv.RecentTurns,
			"active_users_last_24h": conv.ActiveUsers,
		})
	}
}

// HealthCheck reports liveness.
func HealthCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().UTC()})
	}
}

// Diagnose verifies the vector extension and storage are usable.
func Diagnose(pool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		checks := gin.H{}

		var hasVector bool
		if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'vector')`).Scan(&hasVector); err != nil {
			checks["vector_extension"] = "error: " + err.Error()
		} else if hasVector {
			checks["vector_extension"] = "ok"
		} else {
			checks["vector_extension"] = "missing"
		}

		var probe string
		if err := pool.QueryRow(ctx, `SELECT '[1,2,3]'::vector::text`).Scan(&probe); err != nil {
			checks["vector_cast"] = "error: " + err.Error()
		} else {
			checks["vector_cast"] = "ok"
		}

		var chunkCount int64
		if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&chunkCount); err != nil {
			checks["chunks_table"] = "error: " + err.Error()
		} else {
			checks["chunks_table"] = "ok"
			checks["chunk_count"] = chunkCount
		}

		c.JSON(http.StatusOK, checks)
	}
}
