package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Chunk is the unit of retrieval: a bounded segment of source text with
// its embedding. Chunks are written in batches during ingestion and never
// mutated; deletion happens only in bulk, keyed by source name.
type Chunk struct {
	ID            int64           `json:"id"`
	SourceName    string          `json:"source_name"`
	Content       string          `json:"content"`
	Embedding     pgvector.Vector `json:"-"`
	SequenceIndex int             `json:"sequence_index"`
	CreatedAt     time.Time       `json:"created_at"`
}

// DocumentInfo is an aggregated view of one ingested source.
type DocumentInfo struct {
	SourceName string    `json:"source_name"`
	ChunkCount int64     `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}
