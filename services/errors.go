package services

import "fmt"

// ExtractionError means no text could be recovered from a document. It is
// fatal for the ingestion that raised it.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingError means the embedding provider rejected or failed a text.
// During ingestion the affected chunk is skipped; on the query path the
// caller degrades to an empty result set.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string { return fmt.Sprintf("embedding: %v", e.Err) }

func (e *EmbeddingError) Unwrap() error { return e.Err }

// StorageError wraps a persistence failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// GenerationError means the language model could not produce a response.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("generation: %v", e.Err) }

func (e *GenerationError) Unwrap() error { return e.Err }
