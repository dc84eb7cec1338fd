package store

import (
	"context"
	"fmt"
	"time"

	"rag-chatbot-platform/models"
)

// AppendTurn records a completed user/assistant exchange.
func (s *Store) AppendTurn(ctx context.Context, userID int64, message, response string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversation_turns (user_id, message, response) VALUES ($1, $2, $3)`,
		userID, message, response,
	)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// HistorySince returns the user's turns recorded at or after since, oldest
// first, in the order history is replayed into a prompt.
func (s *Store) HistorySince(ctx context.Context, userID int64, since time.Time) ([]models.ConversationTurn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, message, response, created_at
		 FROM conversation_turns
		 WHERE user_id = $1 AND created_at >= $2
		 ORDER BY created_at, id`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("history since: %w", err)
	}
	defer rows.Close()

	var turns []models.ConversationTurn
	for rows.Next() {
		var t models.ConversationTurn
		if err := rows.Scan(&t.ID, &t.UserID, &t.Message, &t.Response, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// RecentTurns returns up to limit turns at or after since, newest first.
func (s *Store) RecentTurns(ctx context.Context, userID int64, since time.Time, limit int) ([]models.ConversationTurn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, message, response, created_at
		 FROM conversation_turns
		 WHERE user_id = $1 AND created_at >= $2
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3`,
		userID, since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent turns: %w", err)
	}
	defer rows.Close()

	var turns []models.ConversationTurn
	for rows.Next() {
		var t models.ConversationTurn
		if err := rows.Scan(&t.ID, &t.UserID, &t.Message, &t.Response, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// ConversationStats reports corpus-wide turn counts and how many distinct
// users were active inside the window.
func (s *Store) ConversationStats(ctx context.Context, window time.Duration) (*models.ConversationStats, error) {
	since := time.Now().UTC().Add(-window)
	var stats models.ConversationStats
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE created_at >= $1),
		        COUNT(DISTINCT user_id) FILTER (WHERE created_at >= $1)
		 FROM conversation_turns`,
		since,
	).Scan(&stats.TotalTurns, &stats.RecentTurns, &stats.ActiveUsers)
	if err != nil {
		return nil, fmt.Errorf("conversation stats: %w", err)
	}
	return &stats, nil
}

// Summary reports total and windowed turn counts for a user.
func (s *Store) Summary(ctx context.Context, userID int64, window time.Duration) (*models.ConversationSummary, error) {
	since := time.Now().UTC().Add(-window)
	var summary models.ConversationSummary
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE created_at >= $2),
		        MAX(created_at)
		 FROM conversation_turns
		 WHERE user_id = $1`,
		userID, since,
	).Scan(&summary.TotalCount, &summary.Last24hCount, &summary.LastTimestamp)
	if err != nil {
		return nil, fmt.Errorf("conversation summary: %w", err)
	}
	return &summary, nil
}
