package services

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"rag-chatbot-platform/internal/ai"
	"rag-chatbot-platform/internal/logger"
	"rag-chatbot-platform/models"
)

// DocumentStore is the persistence surface the ingestor needs.
type DocumentStore interface {
	InsertChunkBatch(ctx context.Context, chunks []models.Chunk) error
}

// Ingestor runs the extraction, chunking, embedding and storage pipeline.
type Ingestor struct {
	extractor        TextExtractor
	embedder         ai.Embedder
	store            DocumentStore
	sectioner        *Sectioner
	chunkSize        int
	chunkOverlap     int
	sectionChunkSize int
	batchSize        int
}

func NewIngestor(extractor TextExtractor, embedder ai.Embedder, store DocumentStore, sectioner *Sectioner, chunkSize, chunkOverlap, sectionChunkSize, batchSize int) *Ingestor {
	return &Ingestor{
		extractor:        extractor,
		embedder:         embedder,
		store:            store,
		sectioner:        sectioner,
		chunkSize:        chunkSize,
		chunkOverlap:     chunkOverlap,
		sectionChunkSize: sectionChunkSize,
		batchSize:        batchSize,
	}
}

// Ingest extracts a document, chunks it and persists embedded chunks under
// sourceName. It returns the number of chunks persisted. Chunks whose
// embedding fails are skipped; a failed storage batch loses only that batch.
func (i *Ingestor) Ingest(ctx context.Context, filePath, sourceName string) (int, error) {
	text, err := i.extractor.ExtractText(ctx, filePath)
	if err != nil {
		return 0, err
	}

	pieces, err := Chunk(text, i.chunkSize, i.chunkOverlap)
	if err != nil {
		return 0, fmt.Errorf("chunk %s: %w", sourceName, err)
	}

	return i.embedAndStore(ctx, sourceName, pieces)
}

// IngestSections splits the document into titled sections before chunking.
// Each section is stored under its own derived source name so it can be
// queried and deleted independently.
func (i *Ingestor) IngestSections(ctx context.Context, filePath, sourceName string) (int, error) {
	text, err := i.extractor.ExtractText(ctx, filePath)
	if err != nil {
		return 0, err
	}

	sections := i.sectioner.Split(text)
	if len(sections) == 0 {
		return 0, &ExtractionError{Source: sourceName, Err: fmt.Errorf("no sections found")}
	}

	total := 0
	for n, section := range sections {
		body := section.Body
		if section.Title != "" {
			body = section.Title + "\n\n" + body
		}

		pieces, err := Chunk(body, i.sectionChunkSize, i.chunkOverlap)
		if err != nil {
			return total, fmt.Errorf("chunk section %d of %s: %w", n+1, sourceName, err)
		}

		sectionSource := fmt.Sprintf("%s_section_%d", sourceName, n+1)
		stored, err := i.embedAndStore(ctx, sectionSource, pieces)
		if err != nil {
			return total, err
		}
		total += stored
	}
	return total, nil
}

func (i *Ingestor) embedAndStore(ctx context.Context, sourceName string, pieces []string) (int, error) {
	batchSize := i.batchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	stored := 0
	skipped := 0
	batch := make([]models.Chunk, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := i.store.InsertChunkBatch(ctx, batch); err != nil {
			logger.Error("chunk batch insert failed, batch lost", "source", sourceName, "batch_size", len(batch), "error", err)
		} else {
			stored += len(batch)
		}
		batch = batch[:0]
	}

	for seq, piece := range pieces {
		embedding, err := i.embedder.Embed(ctx, piece)
		if err != nil {
			skipped++
			logger.Warn("skipping chunk, embedding failed", "source", sourceName, "sequence", seq, "error", err)
			continue
		}

		batch = append(batch, models.Chunk{
			SourceName:    sourceName,
			Content:       piece,
			Embedding:     pgvector.NewVector(embedding),
			SequenceIndex: seq,
		})
		if len(batch) >= batchSize {
			flush()
		}
	}
	flush()

	if skipped > 0 {
		logger.Warn("ingestion completed with skipped chunks", "source", sourceName, "stored", stored, "skipped", skipped)
	}
	return stored, nil
}
