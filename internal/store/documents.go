package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"rag-chatbot-platform/models"
)

// InsertChunkBatch persists a batch of chunks inside a single transaction.
// If any insert fails the whole batch is rolled back and an error returned;
// previously committed batches are unaffected.
func (s *Store) InsertChunkBatch(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin chunk batch: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(
			`INSERT INTO chunks (source_name, content, embedding, sequence_index) VALUES ($1, $2, $3, $4)`,
			c.SourceName, c.Content, c.Embedding, c.SequenceIndex,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range chunks {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert chunk batch: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("close chunk batch: %w", err)
	}

	return tx.Commit(ctx)
}

// SearchChunks returns the k chunks nearest to the query embedding by L2
// distance. Ties are broken by ascending id so results are deterministic.
func (s *Store) SearchChunks(ctx context.Context, embedding pgvector.Vector, k int) ([]models.Chunk, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, source_name, content, sequence_index, created_at
		 FROM chunks
		 ORDER BY embedding <-> $1, id
		 LIMIT $2`,
		embedding, k,
	)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.Chunk
	for rows.Next() {
		var c models.Chunk
		if err := rows.Scan(&c.ID, &c.SourceName, &c.Content, &c.SequenceIndex, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// ListDocuments groups chunks by source and reports per-source counts.
func (s *Store) ListDocuments(ctx context.Context) ([]models.DocumentInfo, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT source_name, COUNT(*), MIN(created_at)
		 FROM chunks
		 GROUP BY source_name
		 ORDER BY source_name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.DocumentInfo
	for rows.Next() {
		var d models.DocumentInfo
		if err := rows.Scan(&d.SourceName, &d.ChunkCount, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// escapeLike makes a string safe for literal use inside a LIKE pattern by
// escaping the wildcard characters and the escape character itself.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `_`, `\_`, `%`, `\%`)
	return r.Replace(s)
}

// sectionSourcePattern matches the derived section sources of sourceName
// (source_section_1, source_section_2, ...) and nothing else.
func sectionSourcePattern(sourceName string) string {
	return escapeLike(sourceName) + `\_section\_%`
}

// DeleteDocument removes every chunk for the given source, including
// section sources derived from it, and returns how many rows were removed.
func (s *Store) DeleteDocument(ctx context.Context, sourceName string) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM chunks WHERE source_name = $1 OR source_name LIKE $2 ESCAPE '\'`,
		sourceName, sectionSourcePattern(sourceName),
	)
	if err != nil {
		return 0, fmt.Errorf("delete document: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) CountChunks(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}

func (s *Store) CountSources(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(DISTINCT source_name) FROM chunks`).Scan(&n)
	return n, err
}
