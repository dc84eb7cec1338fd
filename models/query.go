package models

import "time"

// QueryRequest is the body of POST /api/v1/query. Supplying a user id
// enables conversation history; omitting it answers from documents alone.
type QueryRequest struct {
	Query  string `json:"query" binding:"required"`
	UserID *int64 `json:"user_id"`
}

// QueryResponse is returned by POST /api/v1/query.
type QueryResponse struct {
	Response            string `json:"response"`
	SourcesCount        int    `json:"sources_count"`
	UsedHistory         bool   `json:"used_history"`
	HistoryMessageCount int    `json:"history_messages_count"`
}

// AnswerResult carries the generated answer plus the retrieval metadata the
// API layer reports back to callers.
type AnswerResult struct {
	Response     string
	SourcesCount int
	UsedHistory  bool
	HistoryTurns int
}

// UploadResponse acknowledges an accepted PDF upload. Processing happens in
// the background; callers poll the job by ID.
type UploadResponse struct {
	JobID      string    `json:"job_id"`
	SourceName string    `json:"source_name"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
