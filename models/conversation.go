package models

import "time"

// ConversationTurn is one completed exchange: the user's message and the
// generated response. Turns are append-only and only exist once a response
// was successfully generated; partial turns are never persisted.
type ConversationTurn struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationSummary aggregates a user's conversation activity.
type ConversationSummary struct {
	TotalCount    int64      `json:"total_count"`
	Last24hCount  int64      `json:"last_24h_count"`
	LastTimestamp *time.Time `json:"last_timestamp"`
}

// ConversationStats aggregates activity across all users.
type ConversationStats struct {
	TotalTurns  int64 `json:"total_turns"`
	RecentTurns int64 `json:"turns_last_24h"`
	ActiveUsers int64 `json:"active_users_last_24h"`
}
