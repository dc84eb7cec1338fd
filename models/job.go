package models

import "time"

// Ingest job status constants.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobSucceeded = "succeeded"
	JobFailed    = "failed"
)

// IngestJob tracks one background ingestion run. The upload endpoint creates
// the record in "pending", the worker moves it through "running" to a
// terminal state, and callers poll it by ID.
type IngestJob struct {
	ID         string     `json:"id"`
	SourceName string     `json:"source_name"`
	FilePath   string     `json:"-"`
	Sectioned  bool       `json:"sectioned"`
	Status     string     `json:"status"`
	ChunkCount int        `json:"chunk_count"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
